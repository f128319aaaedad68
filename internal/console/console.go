// Package console writes the converter's diagnostics stream.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logger writes leveled, styled lines to a writer. Styling is dropped when
// the writer is not a terminal.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool

	headingStyle lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
}

// Option configures a Logger.
type Option func(*Logger)

// Quiet suppresses Infof and Section output.
func Quiet(q bool) Option {
	return func(l *Logger) { l.quiet = q }
}

// NoColor renders every line unstyled.
func NoColor(off bool) Option {
	return func(l *Logger) {
		if off {
			plain := lipgloss.NewStyle()
			l.headingStyle, l.warnStyle, l.errorStyle, l.mutedStyle = plain, plain, plain, plain
		}
	}
}

// New returns a Logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	r := lipgloss.NewRenderer(w)
	l := &Logger{
		w: w,
		headingStyle: r.NewStyle().
			Bold(true),
		warnStyle: r.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true),
		errorStyle: r.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		mutedStyle: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, Quiet(true), NoColor(true))
}

func (l *Logger) println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

// Infof writes an informational line.
func (l *Logger) Infof(format string, args ...any) {
	if l.quiet {
		return
	}
	l.println(fmt.Sprintf(format, args...))
}

// Detailf writes a dimmed informational line.
func (l *Logger) Detailf(format string, args ...any) {
	if l.quiet {
		return
	}
	l.println(l.mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Warnf writes a warning. Warnings are written even when quiet.
func (l *Logger) Warnf(format string, args ...any) {
	l.println(l.warnStyle.Render("warning:") + " " + fmt.Sprintf(format, args...))
}

// Errorf writes an error. Errors are written even when quiet.
func (l *Logger) Errorf(format string, args ...any) {
	l.println(l.errorStyle.Render("error:") + " " + fmt.Sprintf(format, args...))
}

// Section writes a heading underlined with dashes, then a blank line.
func (l *Logger) Section(title string) {
	if l.quiet {
		return
	}
	underline := strings.Repeat("-", lipgloss.Width(title))
	l.println(l.headingStyle.Render(title) + "\n" + underline + "\n")
}

// Banner writes title inside a box of '=' characters.
func (l *Logger) Banner(title string) {
	if l.quiet {
		return
	}
	rule := strings.Repeat("=", lipgloss.Width(title)+4)
	l.println("\n" + rule + "\n= " + l.headingStyle.Render(title) + " =\n" + rule)
}
