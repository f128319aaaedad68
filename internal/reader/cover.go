package reader

import (
	"strings"
)

// Cover holds the book's cover image.
type Cover struct {
	Path      string
	MediaType string
	Data      []byte
}

// FileName is "Cover.jpg" for JPEG images and "Cover.png" otherwise.
func (c *Cover) FileName() string {
	if c.MediaType == "image/jpeg" {
		return "Cover.jpg"
	}
	return "Cover.png"
}

// Cover locates the cover image through the cover-image property, the
// <meta name="cover"> element, or an image item named like a cover.
func (b *Book) Cover() (*Cover, error) {
	item, ok := b.coverItem()
	if !ok {
		return nil, ErrNoCover
	}

	p := b.resolveOPFPath(item.Href)
	data, err := b.readFile(p)
	if err != nil {
		return nil, err
	}
	return &Cover{Path: p, MediaType: item.MediaType, Data: data}, nil
}

func (b *Book) coverItem() (opfItem, bool) {
	for _, item := range b.opf.Items {
		if hasProperty(item, "cover-image") {
			return item, true
		}
	}

	for _, meta := range b.opf.Metas {
		if meta.Name != "cover" {
			continue
		}
		if item, ok := b.manifestItem(meta.Content); ok && isImage(item) {
			return item, true
		}
	}

	for _, item := range b.opf.Items {
		if !isImage(item) {
			continue
		}
		if strings.Contains(strings.ToLower(item.ID), "cover") ||
			strings.Contains(strings.ToLower(item.Href), "cover") {
			return item, true
		}
	}
	return opfItem{}, false
}

func isImage(item opfItem) bool {
	return strings.HasPrefix(item.MediaType, "image/")
}
