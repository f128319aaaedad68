package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haydonryan/epub2audiobook/internal/config"
	"github.com/haydonryan/epub2audiobook/internal/console"
	"github.com/haydonryan/epub2audiobook/internal/pipeline"
	"github.com/haydonryan/epub2audiobook/internal/progress"
	"github.com/haydonryan/epub2audiobook/internal/reader"
	"github.com/haydonryan/epub2audiobook/internal/rules"
	"github.com/haydonryan/epub2audiobook/internal/title"
)

type convertOptions struct {
	configPath string
	rulesPath  string
	tocMatch   string
	extractor  string
	quiet      bool
	noColor    bool
	tui        bool
	watch      bool
}

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <epub-filename.epub> <output-directory>",
		Short: "Write one normalized text file per chapter",
		Long: `Convert reads the book's spine, picks a title for each chapter from the table
of contents, and writes into the output directory:

  NNNN_<title>.txt     normalized chapter text
  NNNN_<title>.title   the chapter title (or its id when the title is unusable)
  html/                chapter markup as found in the book
  original/            extracted text before normalizing
  book.sh              BOOK_TITLE, BOOK_AUTHOR and BOOK_COVER exports
  Cover.jpg|png        the cover image, when the book has one
  manifest.json        written files with content hashes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0], args[1])
		},
	}
	addConvertFlags(cmd, opts)
	return cmd
}

func addConvertFlags(cmd *cobra.Command, o *convertOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	f.StringVarP(&o.rulesPath, "rules", "r", rules.DefaultFile, "custom replacement rule file")
	f.StringVar(&o.tocMatch, "toc-match", string(title.StrategyLast), "table of contents tie-break: last, first or exact")
	f.StringVar(&o.extractor, "extractor", "text", "text extractor: text or markdown")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "only print warnings and errors")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	f.BoolVar(&o.tui, "tui", false, "show an interactive progress view while writing chapters")
	f.BoolVarP(&o.watch, "watch", "w", false, "convert again whenever the rule file changes")
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, o *convertOptions) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("rules") || o.configPath == "" {
		cfg.RulesFile = o.rulesPath
	}
	if f.Changed("toc-match") {
		cfg.TOCMatch = o.tocMatch
	}
	if f.Changed("extractor") {
		cfg.Extractor = o.extractor
	}
	return cfg, cfg.Validate()
}

func runConvert(cmd *cobra.Command, o *convertOptions, epubPath, outDir string) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}

	log := console.New(cmd.ErrOrStderr(), console.Quiet(o.quiet || o.tui), console.NoColor(o.noColor))
	log.Banner("EPUB to TXT Converter")

	if !o.watch {
		return convertBook(cfg, o, epubPath, outDir, log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndConvert(ctx, cfg, o, epubPath, outDir, log)
}

func watchAndConvert(ctx context.Context, cfg config.Config, o *convertOptions, epubPath, outDir string, log *console.Logger) error {
	if err := convertBook(cfg, o, epubPath, outDir, log); err != nil {
		return err
	}

	log.Infof("Watching %s for changes (Ctrl+C to stop)", cfg.RulesFile)
	return rules.Watch(ctx, cfg.RulesFile, log, func() {
		log.Infof("")
		log.Infof("%s changed, converting again", cfg.RulesFile)
		if err := convertBook(cfg, o, epubPath, outDir, log); err != nil {
			log.Errorf("%v", err)
		}
	})
}

func convertBook(cfg config.Config, o *convertOptions, epubPath, outDir string, log *console.Logger) error {
	custom, present, err := rules.LoadFile(cfg.RulesFile, log)
	if err != nil {
		return err
	}
	if present {
		log.Infof("Loaded %d custom replacement rules from %s", len(custom), cfg.RulesFile)
	}

	extractor, err := reader.LookupExtractor(cfg.Extractor)
	if err != nil {
		return err
	}
	resolverOpts, err := cfg.ResolverOptions()
	if err != nil {
		return err
	}

	book, err := reader.Open(epubPath)
	if err != nil {
		return err
	}
	defer book.Close()

	conv, err := pipeline.New(pipeline.Options{
		OutputDir:   outDir,
		Extractor:   extractor,
		Rules:       custom,
		Resolver:    title.NewResolver(resolverOpts),
		HTMLDir:     cfg.HTMLDir,
		OriginalDir: cfg.OriginalDir,
		Cover:       cfg.Cover,
		BookScript:  cfg.BookScript,
		Manifest:    cfg.Manifest,
		Log:         log,
	})
	if err != nil {
		return err
	}

	if !o.tui {
		_, err := conv.Run(book)
		return err
	}

	plan, err := conv.Prepare(book)
	if err != nil {
		return err
	}
	err = progress.Run(len(plan.Records), func(i int) (string, error) {
		rec, err := conv.WriteChapter(plan, i)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Wrote %s", rec.BaseName(resolverOpts.MinLength)), nil
	})
	if err != nil {
		return err
	}
	_, err = conv.Finish(plan)
	return err
}
