// Package replace applies ordered regular-expression rewrite rules to text.
//
// A RuleSet is applied front to back: every rule replaces all
// non-overlapping matches in the current buffer and hands the result to the
// next rule. Replacement templates use the regexp expansion syntax, so $1,
// $name and ${name} refer to captured groups.
package replace

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a compiled pattern and its replacement template.
type Rule struct {
	pattern     string
	replacement string
	re          *regexp.Regexp
}

// RuleSet is an ordered list of rules. Duplicates are allowed.
type RuleSet []Rule

// PatternError reports a pattern that failed to compile.
type PatternError struct {
	// Origin says where the pattern came from, e.g. "custom-replacements.conf:4".
	Origin  string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Origin == "" {
		return fmt.Sprintf("compiling pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("%s: compiling pattern %q: %v", e.Origin, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// NewRule compiles pattern and pairs it with replacement.
func NewRule(pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, &PatternError{Pattern: pattern, Err: err}
	}
	return Rule{pattern: pattern, replacement: replacement, re: re}, nil
}

// MustRule is like NewRule but panics if the pattern does not compile.
// It is meant for rules declared in package-level variables.
func MustRule(pattern, replacement string) Rule {
	r, err := NewRule(pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

// Pattern returns the source of the rule's regular expression.
func (r Rule) Pattern() string { return r.pattern }

// Replacement returns the rule's replacement template.
func (r Rule) Replacement() string { return r.replacement }

// Apply runs the rule once over text, replacing every match.
// A zero Rule leaves text unchanged.
func (r Rule) Apply(text string) string {
	if r.re == nil {
		return text
	}
	return r.re.ReplaceAllString(text, r.replacement)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s==%s", r.pattern, r.replacement)
}

// Apply runs each rule in order, feeding the output of one rule into the next.
func Apply(text string, rules RuleSet) string {
	for _, r := range rules {
		text = r.Apply(text)
	}
	return text
}

// Apply is shorthand for Apply(text, rs).
func (rs RuleSet) Apply(text string) string {
	return Apply(text, rs)
}

// Concat joins rule sets into a new RuleSet, preserving order.
func Concat(sets ...RuleSet) RuleSet {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(RuleSet, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

func (rs RuleSet) String() string {
	lines := make([]string, len(rs))
	for i, r := range rs {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}
