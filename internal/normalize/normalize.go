// Package normalize holds the built-in cleanup rules applied to every
// chapter before any user-supplied replacements.
//
// The rules are plain data: three stages of replace.RuleSet, compiled once
// when the package is initialised and applied strictly in declaration order.
// Later stages rely on the line layout produced by the structural stage.
package normalize

import (
	"regexp"

	"github.com/haydonryan/epub2audiobook/internal/replace"
)

// ParagraphMarker is the token text extractors emit where a paragraph or
// heading ends without punctuation. The structural stage turns it into a
// period so speech synthesis pauses there.
const ParagraphMarker = "<pbreak>"

// Stage is a named, ordered group of built-in rules.
type Stage struct {
	Name  string
	Rules replace.RuleSet
}

// Structural normalizes line breaks: paragraph markers become periods,
// trailing line whitespace is dropped, blank lines collapse and the text
// never starts with a newline.
var Structural = replace.RuleSet{
	replace.MustRule(regexp.QuoteMeta(ParagraphMarker), "."),
	replace.MustRule(`[^\S\n]+\n`, "\n"),
	replace.MustRule(`\n+`, "\n"),
	replace.MustRule(`\A\n+`, ""),
}

// Currency spells out dollar amounts. The singular and scaled forms must
// run before the catch-all, which would otherwise consume them.
var Currency = replace.RuleSet{
	replace.MustRule(`\$1$`, "one dollar"),
	replace.MustRule(`\$([1-9][\.]*[0-9]*\s(million|billion|trillion))`, "$1 dollars"),
	replace.MustRule(`\$(?P<m>[,0-9]+)`, "${m} dollars"),
}

// Speed expands kph/mph and their dotted forms. A dotted form that ends a
// line or precedes a capitalized word keeps its period. A unit written
// straight after a number is split from it first.
var Speed = replace.Concat(
	speedRules("k", "kilometers per hour"),
	speedRules("m", "miles per hour"),
)

func speedRules(unit, phrase string) replace.RuleSet {
	dotted := unit + `\.p\.h\.`
	return replace.RuleSet{
		replace.MustRule(`(\d)(`+unit+`ph\b|`+dotted+`)`, "${1} ${2}"),
		replace.MustRule(`\b`+unit+`ph\b`, phrase),
		replace.MustRule(`\b`+dotted+`(\n)`, phrase+".${1}"),
		replace.MustRule(`\b`+dotted+`(\s+)([A-Z])`, phrase+".${1}${2}"),
		replace.MustRule(`\b`+unit+`\.p\.h\.?`, phrase),
	}
}

var stages = []Stage{
	{Name: "structural", Rules: Structural},
	{Name: "currency", Rules: Currency},
	{Name: "speed", Rules: Speed},
}

var builtin = replace.Concat(Structural, Currency, Speed)

// Stages returns the built-in stages in application order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Rules returns every built-in rule flattened into one RuleSet.
func Rules() replace.RuleSet {
	out := make(replace.RuleSet, len(builtin))
	copy(out, builtin)
	return out
}

// Text applies the built-in rules to text.
func Text(text string) string {
	return builtin.Apply(text)
}
