package reader

import (
	"fmt"
	"strings"
)

// Extractor turns a chapter's markup into plain text.
type Extractor interface {
	Name() string
	Extract(html string) (string, error)
}

var registry []Extractor

// Register adds an extractor to the registry.
func Register(e Extractor) {
	registry = append(registry, e)
}

// LookupExtractor returns the registered extractor with the given name.
func LookupExtractor(name string) (Extractor, error) {
	for _, e := range registry {
		if strings.EqualFold(e.Name(), name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown extractor %q (available: %s)", name, strings.Join(Extractors(), ", "))
}

// Extractors returns the names of the registered extractors.
func Extractors() []string {
	var out []string
	for _, e := range registry {
		out = append(out, e.Name())
	}
	return out
}
