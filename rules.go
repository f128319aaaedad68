package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haydonryan/epub2audiobook/internal/console"
	"github.com/haydonryan/epub2audiobook/internal/normalize"
	"github.com/haydonryan/epub2audiobook/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect replacement rules",
	}
	cmd.AddCommand(newRulesCheckCmd())
	cmd.AddCommand(newRulesListCmd())
	return cmd
}

// countingLogger counts the warnings it passes on.
type countingLogger struct {
	*console.Logger
	warnings int
}

func (l *countingLogger) Warnf(format string, args ...any) {
	l.warnings++
	l.Logger.Warnf(format, args...)
}

func newRulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Load a rule file and report problems",
		Long: `Check loads a custom replacement rule file (custom-replacements.conf by
default), warns about every line that is not a comment and has no "=="
delimiter, and fails if a pattern does not compile.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rules.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("cannot check rule file: %w", err)
			}

			log := &countingLogger{Logger: console.New(cmd.ErrOrStderr())}
			set, _, err := rules.LoadFile(path, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules, %d lines ignored\n", path, len(set), log.warnings)
			return nil
		},
	}
}

func newRulesListCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the rules in the order they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, stage := range normalize.Stages() {
				fmt.Fprintf(out, "# %s\n", stage.Name)
				for _, r := range stage.Rules {
					fmt.Fprintln(out, r)
				}
			}

			set, present, err := rules.LoadFile(rulesPath, console.New(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if present {
				fmt.Fprintf(out, "# custom (%s)\n", rulesPath)
				for _, r := range set {
					fmt.Fprintln(out, r)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", rules.DefaultFile, "custom replacement rule file")
	return cmd
}
