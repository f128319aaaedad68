package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, NoColor(true))

	l.Infof("Title: %s", "Alice")
	l.Warnf("line %d ignored", 2)
	l.Errorf("cannot write %s", "out")

	want := "Title: Alice\nwarning: line 2 ignored\nerror: cannot write out\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoggerQuiet(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Quiet(true), NoColor(true))

	l.Infof("hidden")
	l.Detailf("hidden")
	l.Section("Hidden")
	l.Banner("Hidden")
	l.Warnf("shown")

	if got := buf.String(); got != "warning: shown\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, NoColor(true)).Section("Converting to Chapters")

	want := "Converting to Chapters\n----------------------\n\n"
	if got := buf.String(); got != want {
		t.Errorf("Section = %q, want %q", got, want)
	}
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, NoColor(true)).Banner("EPUB to TXT Converter")

	lines := strings.Split(strings.TrimPrefix(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("Banner = %q", buf.String())
	}
	if lines[1] != "= EPUB to TXT Converter =" {
		t.Errorf("middle line = %q", lines[1])
	}
	if len(lines[0]) != len(lines[1]) || strings.Trim(lines[0], "=") != "" {
		t.Errorf("rule line = %q", lines[0])
	}
}

func TestNonTerminalWriterIsUnstyled(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Warnf("plain")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output contains escape codes: %q", buf.String())
	}
}
