package reader

import (
	"io"

	"github.com/taylorskalyo/goreader/epub"
)

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Label string
	// Content is the archive path of the referenced document,
	// including any #fragment.
	Content string
	Level   int
}

// Chapter is one spine document.
type Chapter struct {
	// ID is the manifest id the spine refers to.
	ID string
	// Path is the document's path inside the archive.
	Path string

	item *epub.Item
}

// Content reads the chapter's raw bytes with any UTF-8 BOM removed.
func (c Chapter) Content() ([]byte, error) {
	if c.item == nil {
		return nil, ErrResourceNotFound
	}
	r, err := c.item.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return stripBOM(data), nil
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
