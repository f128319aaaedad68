package reader

import "errors"

var (
	// ErrNoRootfile indicates container.xml lists no package document.
	ErrNoRootfile = errors.New("no rootfiles found in epub")

	// ErrResourceNotFound indicates a referenced file is missing from the archive.
	ErrResourceNotFound = errors.New("resource not found in epub")

	// ErrNoCover indicates no cover image could be located.
	ErrNoCover = errors.New("no cover image found")

	// ErrNoTOC indicates the book has neither an NCX nor a nav document.
	ErrNoTOC = errors.New("no table of contents found")
)
