package reader

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// MarkdownExtractor converts chapter markup to Markdown, keeping heading
// and emphasis markers for synthesisers that understand them.
type MarkdownExtractor struct{}

func init() {
	Register(&MarkdownExtractor{})
}

func (e *MarkdownExtractor) Name() string { return "markdown" }

func (e *MarkdownExtractor) Extract(s string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return norm.NFC.String(markdown), nil
}
