package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/haydonryan/epub2audiobook/internal/console"
	"github.com/haydonryan/epub2audiobook/internal/pipeline"
	"github.com/haydonryan/epub2audiobook/internal/rules"
)

func newNormalizeCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Run the text normalizer over a file or stdin",
		Long: `Normalize applies the built-in rules and then the custom replacement rules to
text read from a file, or from stdin when no file is given, and prints the
result. Use it to try out a rule file without converting a book.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			log := console.New(cmd.ErrOrStderr())
			custom, _, err := rules.LoadFile(rulesPath, log)
			if err != nil {
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), pipeline.Normalize(norm.NFC.String(text), custom))
			return err
		},
	}
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", rules.DefaultFile, "custom replacement rule file")
	return cmd
}

// readInput returns the named file's contents, or stdin when no file is
// given and stdin is not a terminal.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file '%s': %w", args[0], err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return "", errors.New("no input provided. Provide a file or pipe text to stdin")
		}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no text to normalize")
	}
	return string(data), nil
}
