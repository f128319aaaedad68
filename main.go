package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &convertOptions{}

	root := &cobra.Command{
		Use:   "epub2audiobook [flags] <epub-filename.epub> <output-directory>",
		Short: "Convert an EPUB into per-chapter text files for audiobook synthesis",
		Long: `epub2audiobook splits an EPUB into one plain-text file per chapter, named
after the table of contents, and rewrites the text so it reads well aloud:
paragraph markers become periods, dollar amounts and speeds are spelled out,
and custom-replacements.conf supplies your own pattern==replacement rules.

Examples:
  epub2audiobook book.epub out/
  epub2audiobook convert book.epub out/ --rules my-rules.conf --watch
  epub2audiobook normalize chapter.txt
  cat chapter.txt | epub2audiobook normalize
  epub2audiobook rules check`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runConvert(cmd, opts, args[0], args[1])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConvertFlags(root, opts)

	root.AddCommand(newConvertCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newRulesCmd())
	return root
}
