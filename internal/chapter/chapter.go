// Package chapter holds the per-chapter record a conversion builds from the
// spine, and the rules for turning a chapter into output file names.
package chapter

import (
	"fmt"
	"regexp"
	"strings"
)

// Source names where a chapter's display name came from.
type Source string

const (
	SourceTOC Source = "TOC"
	SourceID  Source = "ID"
)

// Record is one spine entry.
type Record struct {
	// ID is the manifest id of the spine entry.
	ID string
	// Ordinal is the 1-based position in the spine.
	Ordinal int
	// Path is the document's path inside the archive.
	Path string
	HTML string

	// Title candidates.
	TOCLabel     string
	TitleTag     string
	SectionTitle string

	// Title is the resolved title; empty when no candidate is usable.
	Title string
}

// DisplayName returns the resolved title when it is longer than min bytes,
// and the chapter ID otherwise.
func (r *Record) DisplayName(min int) string {
	if len(r.Title) > min {
		return r.Title
	}
	return r.ID
}

// TitleSource reports which value DisplayName returns.
func (r *Record) TitleSource(min int) Source {
	if len(r.Title) > min {
		return SourceTOC
	}
	return SourceID
}

// BaseName is the output file name, without extension, for the record.
func (r *Record) BaseName(min int) string {
	return BaseName(r.Ordinal, r.DisplayName(min))
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-/]`)

// Sanitize replaces every character outside [a-zA-Z0-9_.-/] with '_'.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// BaseName formats "{ordinal:04}_{name}" with name sanitized. Slashes are
// flattened to '_' as well so a title cannot name a path outside the
// output directory.
func BaseName(ordinal int, name string) string {
	return fmt.Sprintf("%04d_%s", ordinal, strings.ReplaceAll(Sanitize(name), "/", "_"))
}
