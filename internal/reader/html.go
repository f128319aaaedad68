package reader

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/haydonryan/epub2audiobook/internal/normalize"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// TitleTag returns the concatenated text of the first <title> element.
func TitleTag(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	return doc.Find("title").First().Text()
}

// SectionTitle returns the title attribute of the first <section>
// element, or "" if there is no section or it has no title.
func SectionTitle(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	return doc.Find("section").First().AttrOr("title", "")
}

// TextExtractor concatenates the text nodes of <body>, skipping script
// and style. Headings without closing punctuation are followed by
// normalize.ParagraphMarker and a newline.
type TextExtractor struct{}

func init() {
	Register(&TextExtractor{})
}

func (e *TextExtractor) Name() string { return "text" }

func (e *TextExtractor) Extract(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	root := findElement(doc, atom.Body)
	if root == nil {
		root = doc
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			out.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}

		start := out.Len()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isHeading(n.DataAtom) {
			if needsMarker(out.String()[start:]) {
				out.WriteString(normalize.ParagraphMarker + "\n")
			}
		}
	}
	walk(root)

	return norm.NFC.String(out.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// needsMarker reports whether heading text lacks closing punctuation.
func needsMarker(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	return !strings.ContainsRune(".!?:;", last)
}
