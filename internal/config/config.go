// Package config loads conversion settings from an optional YAML or TOML
// file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/haydonryan/epub2audiobook/internal/reader"
	"github.com/haydonryan/epub2audiobook/internal/rules"
	"github.com/haydonryan/epub2audiobook/internal/title"
)

// Config holds conversion settings. Command-line flags override it.
type Config struct {
	RulesFile        string `yaml:"rules_file" toml:"rules_file"`
	PlaceholderTitle string `yaml:"placeholder_title" toml:"placeholder_title"`
	MinTitleLength   int    `yaml:"min_title_length" toml:"min_title_length"`
	TOCMatch         string `yaml:"toc_match" toml:"toc_match"`
	Extractor        string `yaml:"extractor" toml:"extractor"`

	HTMLDir     string `yaml:"html_dir" toml:"html_dir"`
	OriginalDir string `yaml:"original_dir" toml:"original_dir"`

	Cover      bool `yaml:"cover" toml:"cover"`
	BookScript bool `yaml:"book_script" toml:"book_script"`
	Manifest   bool `yaml:"manifest" toml:"manifest"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		RulesFile:        rules.DefaultFile,
		PlaceholderTitle: title.DefaultPlaceholder,
		MinTitleLength:   title.DefaultMinLength,
		TOCMatch:         string(title.StrategyLast),
		Extractor:        "text",
		HTMLDir:          "html",
		OriginalDir:      "original",
		Cover:            true,
		BookScript:       true,
		Manifest:         true,
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml or .yml for YAML, .toml for TOML. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be used as given.
func (c Config) Validate() error {
	if _, err := title.ParseStrategy(c.TOCMatch); err != nil {
		return err
	}
	if _, err := reader.LookupExtractor(c.Extractor); err != nil {
		return err
	}
	if c.MinTitleLength < 0 {
		return fmt.Errorf("min_title_length must not be negative, got %d", c.MinTitleLength)
	}
	dirs := []struct{ name, dir string }{
		{"html_dir", c.HTMLDir},
		{"original_dir", c.OriginalDir},
	}
	for _, d := range dirs {
		name, dir := d.name, d.dir
		if dir == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
			return fmt.Errorf("%s must be relative to the output directory, got %q", name, dir)
		}
	}
	return nil
}

// ResolverOptions converts the title settings.
func (c Config) ResolverOptions() (title.Options, error) {
	s, err := title.ParseStrategy(c.TOCMatch)
	if err != nil {
		return title.Options{}, err
	}
	return title.Options{
		Placeholder: c.PlaceholderTitle,
		MinLength:   c.MinTitleLength,
		Strategy:    s,
	}, nil
}
