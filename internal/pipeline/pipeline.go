// Package pipeline converts an opened book into per-chapter text files.
//
// A conversion runs in two passes. Prepare reads every chapter and resolves
// titles, which needs the whole book. WriteChapter then handles one chapter
// at a time, in spine order, writing:
//
//	<out>/NNNN_<name>.title         resolved title, or the chapter id
//	<out>/NNNN_<name>.txt           normalized text
//	<out>/<original>/NNNN_<name>.txt text as extracted, before normalizing
//	<out>/<html>/NNNN_<name>.html   chapter markup
//
// Run does both passes and finishes with the book script and manifest.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haydonryan/epub2audiobook/internal/chapter"
	"github.com/haydonryan/epub2audiobook/internal/console"
	"github.com/haydonryan/epub2audiobook/internal/manifest"
	"github.com/haydonryan/epub2audiobook/internal/normalize"
	"github.com/haydonryan/epub2audiobook/internal/reader"
	"github.com/haydonryan/epub2audiobook/internal/replace"
	"github.com/haydonryan/epub2audiobook/internal/title"
)

// Logger receives progress and diagnostics.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Section(title string)
}

// Options configure a Converter.
type Options struct {
	OutputDir string

	// Extractor turns chapter markup into text. Nil means the "text"
	// extractor.
	Extractor reader.Extractor
	// Rules run after the built-in normalizer. Nil means none.
	Rules replace.RuleSet
	// Resolver picks chapter titles. Nil means title.DefaultOptions.
	Resolver *title.Resolver

	HTMLDir     string
	OriginalDir string

	Cover      bool
	BookScript bool
	Manifest   bool

	Log Logger
}

// Converter writes the chapters of a book.
type Converter struct {
	opts      Options
	minLength int
}

// Plan is the result of the book-wide pass.
type Plan struct {
	Title   string
	Author  string
	Records []*chapter.Record
	Report  title.Report
	// Cover is the written cover file name, or "" when there is none.
	Cover string

	manifest *manifest.Manifest
	previous map[string]string
	changed  int
}

// Result summarizes a finished conversion.
type Result struct {
	Title    string
	Author   string
	Chapters []*chapter.Record
	Cover    string
	// Changed counts chapters whose text differs from the previous
	// manifest, or all chapters when there was none.
	Changed int
}

// New returns a Converter, filling in defaults for unset options.
func New(opts Options) (*Converter, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if opts.Extractor == nil {
		e, err := reader.LookupExtractor("text")
		if err != nil {
			return nil, err
		}
		opts.Extractor = e
	}
	if opts.Resolver == nil {
		opts.Resolver = title.NewResolver(title.DefaultOptions())
	}
	if opts.HTMLDir == "" {
		opts.HTMLDir = "html"
	}
	if opts.OriginalDir == "" {
		opts.OriginalDir = "original"
	}
	if opts.Log == nil {
		opts.Log = console.Discard()
	}
	return &Converter{
		opts:      opts,
		minLength: opts.Resolver.Options().MinLength,
	}, nil
}

// Run converts every chapter of book.
func (c *Converter) Run(book *reader.Book) (*Result, error) {
	plan, err := c.Prepare(book)
	if err != nil {
		return nil, err
	}

	c.opts.Log.Section("Converting to Chapters")
	for i := range plan.Records {
		if _, err := c.WriteChapter(plan, i); err != nil {
			return nil, err
		}
	}
	return c.Finish(plan)
}

// Prepare creates the output directories, writes the cover and book
// script, reads every chapter and resolves titles.
func (c *Converter) Prepare(book *reader.Book) (*Plan, error) {
	log := c.opts.Log
	chapters := book.Chapters()
	toc := book.TOC()

	log.Infof("Title: %s", book.Title)
	log.Infof("Author: %s", book.Author)
	log.Infof("Number of Sections: %d", len(chapters))
	log.Infof("Number of Items in TOC: %d", len(toc))
	log.Infof("")
	if err := book.TOCError(); err != nil {
		log.Warnf("table of contents unavailable, titles fall back to chapter ids: %v", err)
	}

	for _, dir := range []string{c.opts.OutputDir, c.htmlDir(), c.originalDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	plan := &Plan{
		Title:    book.Title,
		Author:   book.Author,
		manifest: manifest.New(book.Title, book.Author),
	}

	if c.opts.Cover {
		name, err := c.writeCover(book)
		if err != nil {
			return nil, err
		}
		plan.Cover = name
		plan.manifest.Cover = name
	}

	if c.opts.BookScript {
		if err := writeBookScript(c.opts.OutputDir, book.Title, book.Author); err != nil {
			return nil, err
		}
	}

	if c.opts.Manifest {
		prev, err := manifest.Load(c.opts.OutputDir)
		if err != nil {
			log.Warnf("ignoring previous manifest: %v", err)
		} else if prev != nil {
			plan.previous = prev.Hashes()
		}
	}

	log.Section("Grabbing all title options for book")
	for i, ch := range chapters {
		data, err := ch.Content()
		if err != nil {
			return nil, fmt.Errorf("reading chapter %s: %w", ch.ID, err)
		}
		html := string(data)
		plan.Records = append(plan.Records, &chapter.Record{
			ID:           ch.ID,
			Ordinal:      i + 1,
			Path:         ch.Path,
			HTML:         html,
			TitleTag:     reader.TitleTag(html),
			SectionTitle: reader.SectionTitle(html),
		})
	}

	plan.Report = c.opts.Resolver.Resolve(plan.Records, toc)

	for _, rec := range plan.Records {
		log.Infof("Processing chapter %d/%d: Section Name: %s Path: %s", rec.Ordinal, len(plan.Records), rec.ID, rec.Path)
		log.Infof("  - Title from TOC Tag: <%s>", rec.TOCLabel)
		if c.opts.Resolver.IsPlaceholder(rec.TitleTag) {
			log.Infof("  - Title from Title Tag: <%s> - ignoring", rec.TitleTag)
		} else {
			log.Infof("  - Title from Title Tag: <%s>", rec.TitleTag)
		}
		log.Infof("  - Title from Section Tag: <%s>", rec.SectionTitle)
		log.Infof("")
	}

	log.Section("Applying Rules to decide Title Source")
	if plan.Report.TitleTagsUniform {
		log.Infof("Title Tags all the same or all empty, don't use")
	}
	if plan.Report.SectionTitlesUniform {
		log.Infof("Section Tags all the same or all empty, don't use")
	}
	log.Infof("Using TOC Tags, falling back to chapter ids.")
	log.Infof("")

	return plan, nil
}

// WriteChapter writes the files for plan.Records[i].
func (c *Converter) WriteChapter(plan *Plan, i int) (*chapter.Record, error) {
	if i < 0 || i >= len(plan.Records) {
		return nil, fmt.Errorf("chapter index %d out of range [0, %d)", i, len(plan.Records))
	}
	rec := plan.Records[i]
	base := rec.BaseName(c.minLength)

	titleFile := base + ".title"
	if err := writeFile(filepath.Join(c.opts.OutputDir, titleFile), []byte(rec.DisplayName(c.minLength))); err != nil {
		return nil, err
	}

	c.opts.Log.Infof("Converting Chapter %3d/%d: %-21s Title Source: %-4s Filename: %s",
		rec.Ordinal, len(plan.Records), rec.ID, rec.TitleSource(c.minLength), base)

	extracted, err := c.opts.Extractor.Extract(rec.HTML)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", rec.ID, err)
	}
	originalFile := filepath.Join(c.opts.OriginalDir, base+".txt")
	if err := writeFile(filepath.Join(c.opts.OutputDir, originalFile), []byte(extracted)); err != nil {
		return nil, err
	}

	text := Normalize(extracted, c.opts.Rules)
	textFile := base + ".txt"
	if err := writeFile(filepath.Join(c.opts.OutputDir, textFile), []byte(text)); err != nil {
		return nil, err
	}

	htmlFile := filepath.Join(c.opts.HTMLDir, base+".html")
	if err := writeFile(filepath.Join(c.opts.OutputDir, htmlFile), []byte(rec.HTML)); err != nil {
		return nil, err
	}

	hash := manifest.Hash([]byte(text))
	if plan.previous == nil || plan.previous[textFile] != hash {
		plan.changed++
	}
	plan.manifest.Add(manifest.Entry{
		Ordinal:     rec.Ordinal,
		ID:          rec.ID,
		Title:       rec.Title,
		TitleSource: string(rec.TitleSource(c.minLength)),
		Text:        textFile,
		TitleFile:   titleFile,
		HTML:        filepath.ToSlash(htmlFile),
		Original:    filepath.ToSlash(originalFile),
		Hash:        hash,
	})

	return rec, nil
}

// Finish writes the manifest and returns the run summary.
func (c *Converter) Finish(plan *Plan) (*Result, error) {
	if c.opts.Manifest {
		if err := plan.manifest.Save(c.opts.OutputDir); err != nil {
			return nil, fmt.Errorf("writing manifest: %w", err)
		}
	}

	if plan.previous != nil {
		c.opts.Log.Infof("")
		c.opts.Log.Infof("%d of %d chapters changed since the last run.", plan.changed, len(plan.Records))
	}
	c.opts.Log.Infof("")
	c.opts.Log.Infof("Done.")

	return &Result{
		Title:    plan.Title,
		Author:   plan.Author,
		Chapters: plan.Records,
		Cover:    plan.Cover,
		Changed:  plan.changed,
	}, nil
}

// Normalize runs the built-in normalizer and then custom rules, if any.
func Normalize(text string, custom replace.RuleSet) string {
	text = normalize.Text(text)
	if len(custom) > 0 {
		text = custom.Apply(text)
	}
	return text
}

func (c *Converter) htmlDir() string {
	return filepath.Join(c.opts.OutputDir, c.opts.HTMLDir)
}

func (c *Converter) originalDir() string {
	return filepath.Join(c.opts.OutputDir, c.opts.OriginalDir)
}

func (c *Converter) writeCover(book *reader.Book) (string, error) {
	cover, err := book.Cover()
	if errors.Is(err, reader.ErrNoCover) || errors.Is(err, reader.ErrResourceNotFound) {
		c.opts.Log.Warnf("no cover written: %v", err)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cover: %w", err)
	}

	name := cover.FileName()
	if err := writeFile(filepath.Join(c.opts.OutputDir, name), cover.Data); err != nil {
		return "", err
	}
	return name, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
