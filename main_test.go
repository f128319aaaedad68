package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haydonryan/epub2audiobook/internal/epubtest"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleEPUB(t *testing.T) string {
	t.Helper()
	return epubtest.Write(t, t.TempDir(), epubtest.Book{
		Title:  "A Short Book",
		Author: "Some Author",
		Chapters: []epubtest.Chapter{
			{ID: "cover", Href: "cover.xhtml", HTML: epubtest.Page("Cover", "", "<p>A Short Book</p>")},
			{ID: "c1", Href: "c1.xhtml", HTML: epubtest.Page("A Short Book", "", "<h2>The Start</h2><p>It was 20 mph.</p>")},
			{ID: "c2", Href: "c2.xhtml", HTML: epubtest.Page("A Short Book", "", "<p>It cost $5</p>")},
		},
		TOC: []epubtest.NavPoint{
			{Label: "The Start", Src: "c1.xhtml"},
			{Label: "The End", Src: "c2.xhtml"},
		},
	})
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	rulesFile := writeFile(t, dir, "rules.conf", "# speak it\nStart==Beginning\nbroken line\n")

	_, stderr, err := run(t, "", "convert", sampleEPUB(t), out, "--rules", rulesFile, "--no-color")
	if err != nil {
		t.Fatalf("convert: %v\nstderr:\n%s", err, stderr)
	}

	tests := []struct {
		file string
		want string
	}{
		{"0001_cover.title", "cover"},
		{"0002_The_Start.title", "The Start"},
		{"0002_The_Start.txt", "The Beginning.\nIt was 20 miles per hour."},
		{"0003_The_End.txt", "It cost 5 dollars"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(out, tt.file))
		if err != nil {
			t.Errorf("reading %s: %v", tt.file, err)
			continue
		}
		if got := strings.TrimSpace(string(data)); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.file, got, tt.want)
		}
	}

	for _, name := range []string{"book.sh", "manifest.json", "html/0002_The_Start.html", "original/0002_The_Start.txt"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if !strings.Contains(stderr, "rules.conf:3: ignoring line") {
		t.Errorf("stderr does not report the malformed rule line:\n%s", stderr)
	}
	if !strings.Contains(stderr, "Title from Title Tag: <Cover> - ignoring") {
		t.Errorf("stderr does not report the placeholder title:\n%s", stderr)
	}
	if !strings.Contains(stderr, "no cover written") {
		t.Errorf("stderr does not warn about the missing cover:\n%s", stderr)
	}
}

func TestRootShorthand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	missing := filepath.Join(t.TempDir(), "none.conf")

	if _, stderr, err := run(t, "", sampleEPUB(t), out, "--rules", missing, "--quiet"); err != nil {
		t.Fatalf("root: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "0003_The_End.txt")); err != nil {
		t.Errorf("expected chapter output: %v", err)
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "none.conf")
	badRules := writeFile(t, dir, "bad.conf", "ok==fine\n(unclosed==x\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"one argument", []string{"convert", "book.epub"}, "accepts 2 arg"},
		{"missing book", []string{"convert", filepath.Join(dir, "nope.epub"), dir, "--rules", missing}, "failed to open epub"},
		{"bad strategy", []string{"convert", "x.epub", dir, "--toc-match", "nearest"}, "toc match strategy"},
		{"bad extractor", []string{"convert", "x.epub", dir, "--extractor", "pdf"}, "unknown extractor"},
		{"bad pattern", []string{"convert", sampleEPUB(t), dir, "--rules", badRules}, "bad.conf:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConvertWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfg := writeFile(t, dir, "config.yaml", "html_dir: markup\nmanifest: false\nbook_script: false\nrules_file: "+filepath.Join(dir, "none.conf")+"\n")

	if _, stderr, err := run(t, "", "convert", sampleEPUB(t), out, "--config", cfg, "-q"); err != nil {
		t.Fatalf("convert: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "markup", "0002_The_Start.html")); err != nil {
		t.Errorf("html sidecar not in configured directory: %v", err)
	}
	for _, name := range []string{"manifest.json", "book.sh"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s written although disabled", name)
		}
	}
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	rulesFile := writeFile(t, dir, "rules.conf", "dollars==bucks\n")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "stdin built-ins only",
			stdin: "\n\nGoing 50 k.p.h.\nIt cost $1",
			args:  []string{"normalize", "--rules", filepath.Join(dir, "none.conf")},
			want:  "Going 50 kilometers per hour.\nIt cost one dollar",
		},
		{
			name:  "stdin with custom rules",
			stdin: "from $1000 to $1,000,000",
			args:  []string{"normalize", "--rules", rulesFile},
			want:  "from 1000 bucks to 1,000,000 bucks",
		},
		{
			name: "file argument",
			args: []string{"normalize", writeFile(t, dir, "in.txt", "A $1 million bet"), "--rules", rulesFile},
			want: "A 1 million bucks bet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("normalize: %v\n%s", err, stderr)
			}
			if stdout != tt.want {
				t.Errorf("normalize = %q, want %q", stdout, tt.want)
			}
		})
	}

	if _, _, err := run(t, "  \n", "normalize"); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestRulesCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.conf", "# comment\n\nMr\\.==Mister\nno delimiter here\nDr\\.==Doctor\n")
	bad := writeFile(t, dir, "bad.conf", "[==x\n")

	stdout, stderr, err := run(t, "", "rules", "check", good)
	if err != nil {
		t.Fatalf("rules check: %v", err)
	}
	if !strings.Contains(stdout, "2 rules, 1 lines ignored") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "good.conf:4") {
		t.Errorf("stderr = %q, want the malformed line number", stderr)
	}

	if _, _, err := run(t, "", "rules", "check", bad); err == nil || !strings.Contains(err.Error(), "bad.conf:1") {
		t.Errorf("rules check on invalid pattern: err = %v", err)
	}
	if _, _, err := run(t, "", "rules", "check", filepath.Join(dir, "missing.conf")); err == nil {
		t.Error("rules check on missing file should fail")
	}
}

func TestRulesList(t *testing.T) {
	dir := t.TempDir()
	rulesFile := writeFile(t, dir, "rules.conf", "colour==color\n")

	stdout, _, err := run(t, "", "rules", "list", "--rules", rulesFile)
	if err != nil {
		t.Fatalf("rules list: %v", err)
	}

	order := []string{"# structural", "# currency", "# speed", "# custom (", "colour==color"}
	last := -1
	for _, s := range order {
		i := strings.Index(stdout, s)
		if i < 0 {
			t.Errorf("output missing %q:\n%s", s, stdout)
			continue
		}
		if i < last {
			t.Errorf("%q printed out of order", s)
		}
		last = i
	}
	if !strings.Contains(stdout, "one dollar") {
		t.Errorf("built-in currency rule not listed:\n%s", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(stdout, version) {
		t.Errorf("version output = %q", stdout)
	}
}
