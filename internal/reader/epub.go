// Package reader opens EPUB files and extracts what the converter needs
// from them: spine-ordered chapters, the table of contents, metadata, the
// cover image, and text from chapter markup.
package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// Book is an opened EPUB file.
type Book struct {
	Title  string
	Author string

	rc       *epub.ReadCloser
	zr       *zip.ReadCloser
	rootfile *epub.Rootfile
	opf      opfPackage
	chapters []Chapter
	toc      []TOCEntry
	tocErr   error
}

// opfPackage holds the parts of the package document goreader does not
// expose.
type opfPackage struct {
	Metas []opfMeta `xml:"metadata>meta"`
	Items []opfItem `xml:"manifest>item"`
	Spine struct {
		Toc string `xml:"toc,attr"`
	} `xml:"spine"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// Open opens an EPUB file and reads its spine and table of contents.
// A book without a table of contents opens fine; see TOCError.
func Open(filename string) (*Book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}

	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, ErrNoRootfile
	}

	zr, err := zip.OpenReader(filename)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to open epub archive: %w", err)
	}

	b := &Book{
		rc:       rc,
		zr:       zr,
		rootfile: rc.Rootfiles[0],
	}
	b.Title = strings.TrimSpace(b.rootfile.Title)
	b.Author = strings.TrimSpace(b.rootfile.Creator)

	opfData, err := b.readFile(b.rootfile.FullPath)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to read package document: %w", err)
	}
	if err := xml.Unmarshal(stripBOM(opfData), &b.opf); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to parse package document: %w", err)
	}

	b.chapters = b.spineChapters()
	b.toc, b.tocErr = b.loadTOC()

	return b, nil
}

// Close releases the underlying archive.
func (b *Book) Close() error {
	if b.rc != nil {
		b.rc.Close()
	}
	if b.zr != nil {
		return b.zr.Close()
	}
	return nil
}

// Chapters returns the spine documents in reading order. Spine entries
// that point at missing manifest items are left out.
func (b *Book) Chapters() []Chapter {
	return b.chapters
}

// TOC returns the flattened table of contents in traversal order.
func (b *Book) TOC() []TOCEntry {
	return b.toc
}

// TOCError reports why the table of contents is empty, if it is.
func (b *Book) TOCError() error {
	return b.tocErr
}

func (b *Book) spineChapters() []Chapter {
	var chapters []Chapter
	for _, ref := range b.rootfile.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		chapters = append(chapters, Chapter{
			ID:   ref.IDREF,
			Path: b.resolveOPFPath(ref.Item.HREF),
			item: ref.Item,
		})
	}
	return chapters
}

// resolveOPFPath turns an href from the package document into an archive path.
func (b *Book) resolveOPFPath(href string) string {
	return resolveHref(path.Dir(b.rootfile.FullPath), href)
}

// resolveHref joins href onto the directory base, keeping any fragment.
func resolveHref(base, href string) string {
	if href == "" {
		return ""
	}
	file, frag, _ := strings.Cut(href, "#")
	if file == "" {
		return ""
	}
	if u, err := url.PathUnescape(file); err == nil {
		file = u
	}
	resolved := path.Join(base, file)
	if frag != "" {
		resolved += "#" + frag
	}
	return resolved
}

func (b *Book) findFile(name string) *zip.File {
	for _, f := range b.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (b *Book) readFile(name string) ([]byte, error) {
	f := b.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrResourceNotFound)
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *Book) manifestItem(id string) (opfItem, bool) {
	for _, item := range b.opf.Items {
		if item.ID == id {
			return item, true
		}
	}
	return opfItem{}, false
}

func hasProperty(item opfItem, prop string) bool {
	for _, p := range strings.Fields(item.Properties) {
		if p == prop {
			return true
		}
	}
	return false
}
