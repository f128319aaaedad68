package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haydonryan/epub2audiobook/internal/title"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadYAMLAndTOMLAgree(t *testing.T) {
	yamlPath := writeFile(t, "config.yaml", `
rules_file: my-rules.conf
placeholder_title: Front
min_title_length: 4
toc_match: exact
extractor: markdown
cover: false
`)
	tomlPath := writeFile(t, "config.toml", `
rules_file = "my-rules.conf"
placeholder_title = "Front"
min_title_length = 4
toc_match = "exact"
extractor = "markdown"
cover = false
`)

	fromYAML, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}
	fromTOML, err := Load(tomlPath)
	if err != nil {
		t.Fatalf("Load toml: %v", err)
	}
	if fromYAML != fromTOML {
		t.Errorf("yaml %+v != toml %+v", fromYAML, fromTOML)
	}

	if fromYAML.RulesFile != "my-rules.conf" || fromYAML.MinTitleLength != 4 || fromYAML.Cover {
		t.Errorf("unexpected values: %+v", fromYAML)
	}
	// Fields missing from the file keep their defaults.
	if !fromYAML.BookScript || !fromYAML.Manifest || fromYAML.HTMLDir != "html" {
		t.Errorf("defaults lost: %+v", fromYAML)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown extension", "config.json", "{}", "unsupported config format"},
		{"bad yaml", "config.yml", "rules_file: [", "parsing"},
		{"bad strategy", "config.yaml", "toc_match: nearest", "toc match strategy"},
		{"bad extractor", "config.toml", `extractor = "pdf"`, "unknown extractor"},
		{"escaping dir", "config.yaml", "html_dir: ../html", "html_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolverOptions(t *testing.T) {
	cfg := Default()
	cfg.TOCMatch = "first"
	opts, err := cfg.ResolverOptions()
	if err != nil {
		t.Fatalf("ResolverOptions: %v", err)
	}
	want := title.Options{Placeholder: "Cover", MinLength: 2, Strategy: title.StrategyFirst}
	if opts != want {
		t.Errorf("ResolverOptions = %+v, want %+v", opts, want)
	}
}
