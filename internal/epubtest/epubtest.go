// Package epubtest builds small EPUB files for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Book describes the EPUB to build.
type Book struct {
	Title    string
	Author   string
	Chapters []Chapter
	TOC      []NavPoint
	// Nav writes an EPUB 3 nav document instead of an NCX.
	Nav   bool
	Cover *Image
}

// Chapter is one spine document. Href is relative to the package document.
type Chapter struct {
	ID   string
	Href string
	HTML string
}

// NavPoint is a table-of-contents entry. Src is relative to the TOC file.
type NavPoint struct {
	Label    string
	Src      string
	Children []NavPoint
}

// Image is a manifest image item.
type Image struct {
	ID        string
	Href      string
	MediaType string
	Data      []byte
	// Meta adds <meta name="cover"> pointing at the item.
	Meta bool
}

// Page returns a minimal XHTML document.
func Page(title, sectionTitle, body string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n<head>")
	if title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	}
	b.WriteString("</head>\n<body>\n")
	if sectionTitle != "" {
		fmt.Fprintf(&b, "<section title=\"%s\">\n%s\n</section>", html.EscapeString(sectionTitle), body)
	} else {
		b.WriteString(body)
	}
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Write builds the EPUB in dir and returns its path.
func Write(t testing.TB, dir string, book Book) string {
	t.Helper()

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	add := func(name string, data []byte) {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("epubtest: create %s: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("epubtest: write %s: %v", name, err)
		}
	}

	add("mimetype", []byte("application/epub+zip"))
	add("META-INF/container.xml", []byte(containerXML))
	add("OEBPS/content.opf", []byte(packageDocument(book)))
	if book.Nav {
		add("OEBPS/nav.xhtml", []byte(navDocument(book.TOC)))
	} else {
		add("OEBPS/toc.ncx", []byte(ncxDocument(book)))
	}
	for _, ch := range book.Chapters {
		add("OEBPS/"+ch.Href, []byte(ch.HTML))
	}
	if book.Cover != nil {
		add("OEBPS/"+book.Cover.Href, book.Cover.Data)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("epubtest: close: %v", err)
	}

	path := filepath.Join(dir, "book.epub")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("epubtest: write file: %v", err)
	}
	return path
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

func packageDocument(book Book) string {
	esc := html.EscapeString
	var b strings.Builder

	version := "2.0"
	if book.Nav {
		version = "3.0"
	}
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="%s" unique-identifier="bookid">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>%s</dc:title>
<dc:creator>%s</dc:creator>
<dc:identifier id="bookid">urn:uuid:epubtest</dc:identifier>
`, version, esc(book.Title), esc(book.Author))
	if book.Cover != nil && book.Cover.Meta {
		fmt.Fprintf(&b, "<meta name=\"cover\" content=\"%s\"/>\n", esc(book.Cover.ID))
	}
	b.WriteString("</metadata>\n<manifest>\n")

	if book.Nav {
		b.WriteString(`<item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	} else {
		b.WriteString(`<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
	}
	for _, ch := range book.Chapters {
		fmt.Fprintf(&b, "<item id=\"%s\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", esc(ch.ID), esc(ch.Href))
	}
	if c := book.Cover; c != nil {
		props := ""
		if !c.Meta && book.Nav {
			props = ` properties="cover-image"`
		}
		fmt.Fprintf(&b, "<item id=\"%s\" href=\"%s\" media-type=\"%s\"%s/>\n", esc(c.ID), esc(c.Href), esc(c.MediaType), props)
	}
	b.WriteString("</manifest>\n")

	if book.Nav {
		b.WriteString("<spine>\n")
	} else {
		b.WriteString("<spine toc=\"ncx\">\n")
	}
	for _, ch := range book.Chapters {
		fmt.Fprintf(&b, "<itemref idref=\"%s\"/>\n", esc(ch.ID))
	}
	b.WriteString("</spine>\n</package>\n")
	return b.String()
}

func ncxDocument(book Book) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
<head><meta name="dtb:uid" content="urn:uuid:epubtest"/></head>
<docTitle><text>%s</text></docTitle>
<navMap>
`, html.EscapeString(book.Title))
	order := 0
	writeNavPoints(&b, book.TOC, &order)
	b.WriteString("</navMap>\n</ncx>\n")
	return b.String()
}

func writeNavPoints(b *strings.Builder, points []NavPoint, order *int) {
	for _, np := range points {
		*order++
		fmt.Fprintf(b, "<navPoint id=\"np%d\" playOrder=\"%d\"><navLabel><text>%s</text></navLabel><content src=\"%s\"/>\n",
			*order, *order, html.EscapeString(np.Label), html.EscapeString(np.Src))
		writeNavPoints(b, np.Children, order)
		b.WriteString("</navPoint>\n")
	}
}

func navDocument(points []NavPoint) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
<nav epub:type="landmarks"><ol><li><a href="ignored.xhtml">Landmark</a></li></ol></nav>
<nav epub:type="toc">
`)
	writeNavList(&b, points)
	b.WriteString("</nav>\n</body>\n</html>\n")
	return b.String()
}

func writeNavList(b *strings.Builder, points []NavPoint) {
	if len(points) == 0 {
		return
	}
	b.WriteString("<ol>\n")
	for _, np := range points {
		fmt.Fprintf(b, "<li><a href=\"%s\">%s</a>", html.EscapeString(np.Src), html.EscapeString(np.Label))
		writeNavList(b, np.Children)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
}
