package reader

import (
	"errors"
	"strings"
	"testing"

	"github.com/haydonryan/epub2audiobook/internal/epubtest"
	"github.com/haydonryan/epub2audiobook/internal/normalize"
)

func sampleBook() epubtest.Book {
	return epubtest.Book{
		Title:  "  The Sample Book ",
		Author: "Jane Writer",
		Chapters: []epubtest.Chapter{
			{ID: "cover", Href: "text/cover.xhtml", HTML: epubtest.Page("Cover", "", "<p>cover</p>")},
			{ID: "ch1", Href: "text/ch1.xhtml", HTML: epubtest.Page("Book", "Opening", "<h1>Chapter One</h1><p>It began.</p>")},
			{ID: "ch2", Href: "text/ch%202.xhtml", HTML: "\xEF\xBB\xBF" + epubtest.Page("Book", "", "<p>Second.</p>")},
		},
		TOC: []epubtest.NavPoint{
			{Label: " Part One ", Src: "text/ch1.xhtml", Children: []epubtest.NavPoint{
				{Label: "Chapter 1", Src: "text/ch1.xhtml#start"},
			}},
			{Label: "Chapter 2", Src: "text/ch%202.xhtml"},
		},
	}
}

func TestOpen(t *testing.T) {
	path := epubtest.Write(t, t.TempDir(), sampleBook())

	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	if book.Title != "The Sample Book" {
		t.Errorf("Title = %q, want trimmed title", book.Title)
	}
	if book.Author != "Jane Writer" {
		t.Errorf("Author = %q", book.Author)
	}

	chapters := book.Chapters()
	wantIDs := []string{"cover", "ch1", "ch2"}
	if len(chapters) != len(wantIDs) {
		t.Fatalf("got %d chapters, want %d", len(chapters), len(wantIDs))
	}
	for i, id := range wantIDs {
		if chapters[i].ID != id {
			t.Errorf("chapter %d ID = %q, want %q", i, chapters[i].ID, id)
		}
	}
	if chapters[1].Path != "OEBPS/text/ch1.xhtml" {
		t.Errorf("chapter path = %q", chapters[1].Path)
	}

	data, err := chapters[2].Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if strings.HasPrefix(string(data), "\xEF\xBB\xBF") {
		t.Error("Content kept the byte order mark")
	}
	if !strings.Contains(string(data), "Second.") {
		t.Errorf("Content = %q", data)
	}
}

func TestTOCFromNCX(t *testing.T) {
	path := epubtest.Write(t, t.TempDir(), sampleBook())

	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	if err := book.TOCError(); err != nil {
		t.Fatalf("TOCError: %v", err)
	}

	want := []TOCEntry{
		{Label: "Part One", Content: "OEBPS/text/ch1.xhtml", Level: 0},
		{Label: "Chapter 1", Content: "OEBPS/text/ch1.xhtml#start", Level: 1},
		{Label: "Chapter 2", Content: "OEBPS/text/ch 2.xhtml", Level: 0},
	}
	got := book.TOC()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTOCFromNav(t *testing.T) {
	b := sampleBook()
	b.Nav = true
	path := epubtest.Write(t, t.TempDir(), b)

	book, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer book.Close()

	got := book.TOC()
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(got), got)
	}
	if got[0].Label != "Part One" || got[0].Level != 0 {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Content != "OEBPS/text/ch1.xhtml#start" || got[1].Level != 1 {
		t.Errorf("entry 1 = %+v", got[1])
	}
	if got[2].Label != "Chapter 2" {
		t.Errorf("entry 2 = %+v", got[2])
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"OEBPS", "text/a.xhtml", "OEBPS/text/a.xhtml"},
		{"OEBPS/text", "../images/c.jpg", "OEBPS/images/c.jpg"},
		{".", "a.xhtml#x", "a.xhtml#x"},
		{"OEBPS", "a%20b.xhtml", "OEBPS/a b.xhtml"},
		{"OEBPS", "#frag", ""},
		{"OEBPS", "", ""},
	}

	for _, tt := range tests {
		if got := resolveHref(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveHref(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestCover(t *testing.T) {
	t.Run("meta", func(t *testing.T) {
		b := sampleBook()
		b.Cover = &epubtest.Image{ID: "img", Href: "images/front.jpg", MediaType: "image/jpeg", Data: []byte("jpeg"), Meta: true}
		book, err := Open(epubtest.Write(t, t.TempDir(), b))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer book.Close()

		cover, err := book.Cover()
		if err != nil {
			t.Fatalf("Cover: %v", err)
		}
		if string(cover.Data) != "jpeg" {
			t.Errorf("Data = %q", cover.Data)
		}
		if cover.FileName() != "Cover.jpg" {
			t.Errorf("FileName = %q", cover.FileName())
		}
	})

	t.Run("property", func(t *testing.T) {
		b := sampleBook()
		b.Nav = true
		b.Cover = &epubtest.Image{ID: "img", Href: "images/front.png", MediaType: "image/png", Data: []byte("png")}
		book, err := Open(epubtest.Write(t, t.TempDir(), b))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer book.Close()

		cover, err := book.Cover()
		if err != nil {
			t.Fatalf("Cover: %v", err)
		}
		if cover.FileName() != "Cover.png" {
			t.Errorf("FileName = %q", cover.FileName())
		}
	})

	t.Run("missing", func(t *testing.T) {
		book, err := Open(epubtest.Write(t, t.TempDir(), sampleBook()))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer book.Close()

		if _, err := book.Cover(); !errors.Is(err, ErrNoCover) {
			t.Errorf("Cover error = %v, want ErrNoCover", err)
		}
	})
}

func TestTitleTagAndSectionTitle(t *testing.T) {
	page := epubtest.Page("Midnight", "The Hour", "<p>text</p>")
	if got := TitleTag(page); got != "Midnight" {
		t.Errorf("TitleTag = %q", got)
	}
	if got := SectionTitle(page); got != "The Hour" {
		t.Errorf("SectionTitle = %q", got)
	}

	bare := epubtest.Page("", "", "<p>text</p>")
	if got := TitleTag(bare); got != "" {
		t.Errorf("TitleTag without title = %q", got)
	}
	if got := SectionTitle(bare); got != "" {
		t.Errorf("SectionTitle without section = %q", got)
	}
	if got := SectionTitle(`<body><section><p>x</p></section></body>`); got != "" {
		t.Errorf("SectionTitle without attribute = %q", got)
	}
}

func TestTextExtractor(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "heading gets marker",
			body: "<h1>Chapter One</h1>\n<p>Text.</p>",
			want: "Chapter One" + normalize.ParagraphMarker + "\n\nText.",
		},
		{
			name: "marker separates adjacent paragraph",
			body: "<h1>Hi</h1><p>x</p>",
			want: "Hi" + normalize.ParagraphMarker + "\nx",
		},
		{
			name: "punctuated heading",
			body: "<h2>Who goes there?</h2><p>Me.</p>",
			want: "Who goes there?Me.",
		},
		{
			name: "script and style skipped",
			body: "<script>var x;</script><style>p{}</style><p>Only this.</p>",
			want: "Only this.",
		},
		{
			name: "composed to NFC",
			body: "<p>Cafe\u0301</p>",
			want: "Caf\u00e9",
		},
	}

	e, err := LookupExtractor("text")
	if err != nil {
		t.Fatalf("LookupExtractor: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract("<html><head><title>T</title></head><body>" + tt.body + "</body></html>")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownExtractor(t *testing.T) {
	e, err := LookupExtractor("MARKDOWN")
	if err != nil {
		t.Fatalf("LookupExtractor: %v", err)
	}
	got, err := e.Extract("<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "# Title") || !strings.Contains(got, "**bold**") {
		t.Errorf("Extract = %q", got)
	}
}

func TestLookupExtractorUnknown(t *testing.T) {
	_, err := LookupExtractor("pdf")
	if err == nil {
		t.Fatal("expected error for unknown extractor")
	}
	for _, name := range Extractors() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list %q", err, name)
		}
	}
}
