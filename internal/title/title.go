// Package title decides which title each chapter of a book gets.
//
// Three candidates are collected per chapter: the label of the table of
// contents entry pointing at the chapter, the text of the document's
// <title> element, and the title attribute of its first <section>. Only
// the table of contents is trusted today; the other two sources are
// checked for book-wide uniformity and reported, so a caller can log
// whether they would have been informative.
package title

import (
	"fmt"
	"strings"

	"github.com/haydonryan/epub2audiobook/internal/chapter"
	"github.com/haydonryan/epub2audiobook/internal/reader"
)

// Strategy picks a table of contents entry when several point at the same
// chapter document.
type Strategy string

const (
	// StrategyLast takes the last entry whose reference contains the
	// chapter path.
	StrategyLast Strategy = "last"
	// StrategyFirst takes the first such entry.
	StrategyFirst Strategy = "first"
	// StrategyExact prefers an entry whose reference, without fragment,
	// equals the chapter path, and otherwise behaves like StrategyLast.
	StrategyExact Strategy = "exact"
)

// ParseStrategy converts a configuration value to a Strategy. The empty
// string selects StrategyLast.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyLast:
		return StrategyLast, nil
	case StrategyFirst:
		return StrategyFirst, nil
	case StrategyExact:
		return StrategyExact, nil
	}
	return "", fmt.Errorf("unknown toc match strategy %q (want last, first or exact)", s)
}

const (
	// DefaultPlaceholder is the <title> text that never names a chapter.
	DefaultPlaceholder = "Cover"
	// DefaultMinLength is the length a title must exceed to be used.
	DefaultMinLength = 2
)

// Options configure a Resolver.
type Options struct {
	// Placeholder is a <title> value ignored for every chapter. Empty
	// disables the check.
	Placeholder string
	// MinLength is the number of bytes a title must exceed.
	MinLength int
	Strategy  Strategy
}

// DefaultOptions returns the resolver defaults.
func DefaultOptions() Options {
	return Options{
		Placeholder: DefaultPlaceholder,
		MinLength:   DefaultMinLength,
		Strategy:    StrategyLast,
	}
}

// Report holds the book-wide view of the title candidates.
type Report struct {
	// TitleTags are the <title> candidates, placeholders left out.
	TitleTags     []string
	SectionTitles []string

	// TitleTagsUniform is true when every <title> candidate is the same
	// (or there are none), which makes the source useless for telling
	// chapters apart.
	TitleTagsUniform     bool
	SectionTitlesUniform bool
}

// Resolver assigns titles to chapter records.
type Resolver struct {
	opts Options
}

// NewResolver returns a Resolver. An empty strategy means StrategyLast.
func NewResolver(opts Options) *Resolver {
	if opts.Strategy == "" {
		opts.Strategy = StrategyLast
	}
	return &Resolver{opts: opts}
}

// Options returns the resolver's effective options.
func (r *Resolver) Options() Options {
	return r.opts
}

// IsPlaceholder reports whether a <title> value is the placeholder.
func (r *Resolver) IsPlaceholder(s string) bool {
	return r.opts.Placeholder != "" && s == r.opts.Placeholder
}

// Resolve fills TOCLabel and Title on every record. TitleTag and
// SectionTitle must already be set. The whole book is needed because the
// uniformity of each source is a property of all chapters together.
func (r *Resolver) Resolve(recs []*chapter.Record, toc []reader.TOCEntry) Report {
	var rep Report

	for _, rec := range recs {
		rec.TOCLabel = MatchTOC(rec.Path, toc, r.opts.Strategy)
		if !r.IsPlaceholder(rec.TitleTag) {
			rep.TitleTags = append(rep.TitleTags, rec.TitleTag)
		}
		rep.SectionTitles = append(rep.SectionTitles, rec.SectionTitle)
	}

	rep.TitleTagsUniform = AllSame(rep.TitleTags)
	rep.SectionTitlesUniform = AllSame(rep.SectionTitles)

	for _, rec := range recs {
		rec.Title = r.choose(rec)
	}
	return rep
}

// choose applies the source precedence. Only the table of contents is
// consulted; a title that is too short resolves to "".
func (r *Resolver) choose(rec *chapter.Record) string {
	if len(rec.TOCLabel) > r.opts.MinLength {
		return rec.TOCLabel
	}
	return ""
}

// MatchTOC returns the label of the entry whose content reference contains
// path, using s to break ties. It returns "" when nothing matches.
func MatchTOC(path string, toc []reader.TOCEntry, s Strategy) string {
	if path == "" {
		return ""
	}

	if s == StrategyExact {
		for _, e := range toc {
			file, _, _ := strings.Cut(e.Content, "#")
			if file == path {
				return e.Label
			}
		}
	}

	label := ""
	for _, e := range toc {
		if !strings.Contains(e.Content, path) {
			continue
		}
		if s == StrategyFirst {
			return e.Label
		}
		label = e.Label
	}
	return label
}

// AllSame reports whether every value equals the first. An empty slice
// counts as uniform.
func AllSame(values []string) bool {
	for _, v := range values {
		if v != values[0] {
			return false
		}
	}
	return true
}
