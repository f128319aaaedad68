package reader

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// loadTOC reads the NCX, falling back to an EPUB 3 nav document.
func (b *Book) loadTOC() ([]TOCEntry, error) {
	if ncxPath := b.findNCX(); ncxPath != "" {
		data, err := b.readFile(ncxPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read NCX: %w", err)
		}
		return parseNCX(data, path.Dir(ncxPath))
	}

	if navPath := b.findNav(); navPath != "" {
		data, err := b.readFile(navPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read nav document: %w", err)
		}
		return parseNav(data, path.Dir(navPath))
	}

	return nil, ErrNoTOC
}

// findNCX locates the NCX via the spine's toc attribute, then by media
// type, then by extension.
func (b *Book) findNCX() string {
	if item, ok := b.manifestItem(b.opf.Spine.Toc); ok && b.opf.Spine.Toc != "" {
		return b.resolveOPFPath(item.Href)
	}
	for _, item := range b.opf.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			return b.resolveOPFPath(item.Href)
		}
	}
	for _, f := range b.zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".ncx") {
			return f.Name
		}
	}
	return ""
}

func (b *Book) findNav() string {
	for _, item := range b.opf.Items {
		if hasProperty(item, "nav") {
			return b.resolveOPFPath(item.Href)
		}
	}
	return ""
}

func parseNCX(data []byte, dir string) ([]TOCEntry, error) {
	var toc ncx
	if err := xml.Unmarshal(stripBOM(data), &toc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	return flattenNavPoints(toc.NavMap.NavPoints, dir, 0), nil
}

// flattenNavPoints walks the navMap depth first, parents before children.
func flattenNavPoints(points []navPoint, dir string, level int) []TOCEntry {
	var entries []TOCEntry

	for _, np := range points {
		entries = append(entries, TOCEntry{
			Label:   strings.TrimSpace(np.Label.Text),
			Content: resolveHref(dir, strings.TrimSpace(np.Content.Src)),
			Level:   level,
		})
		if len(np.Children) > 0 {
			entries = append(entries, flattenNavPoints(np.Children, dir, level+1)...)
		}
	}

	return entries
}

// parseNav reads the anchors of the toc nav element in document order.
func parseNav(data []byte, dir string) ([]TOCEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nav document: %w", err)
	}

	var nav *goquery.Selection
	doc.Find("nav").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, t := range strings.Fields(s.AttrOr("epub:type", "")) {
			if t == "toc" {
				nav = s
				return false
			}
		}
		return true
	})
	if nav == nil {
		nav = doc.Find("nav").First()
	}
	if nav.Length() == 0 {
		return nil, ErrNoTOC
	}

	var entries []TOCEntry
	nav.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		level := a.ParentsUntilSelection(nav).Filter("ol").Length() - 1
		if level < 0 {
			level = 0
		}
		entries = append(entries, TOCEntry{
			Label:   strings.Join(strings.Fields(a.Text()), " "),
			Content: resolveHref(dir, strings.TrimSpace(href)),
			Level:   level,
		})
	})
	return entries, nil
}
