// Package rules loads user-maintained replacement rules.
//
// A rule file holds one rule per line:
//
//	# comment
//	Mr\.==Mister
//	(\d+)km==$1 kilometers
//
// The pattern is everything before the first "==", the replacement
// everything after it. Empty lines and lines starting with '#' are skipped.
// A line without "==" is reported and skipped; a pattern that does not
// compile is an error.
package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/haydonryan/epub2audiobook/internal/replace"
)

// DefaultFile is the rule file looked up in the working directory.
const DefaultFile = "custom-replacements.conf"

// Delimiter separates pattern and replacement on a rule line.
const Delimiter = "=="

// ErrNoDelimiter is returned by ParseLine for a line without Delimiter.
var ErrNoDelimiter = errors.New("no '" + Delimiter + "' found")

// Logger receives diagnostics about recoverable problems.
type Logger interface {
	Warnf(format string, args ...any)
}

type discard struct{}

func (discard) Warnf(string, ...any) {}

// ParseLine splits a single rule line. ok is false for empty lines,
// comments and malformed lines; err is ErrNoDelimiter for the latter.
func ParseLine(line string) (pattern, replacement string, ok bool, err error) {
	if line == "" || line[0] == '#' {
		return "", "", false, nil
	}
	pattern, replacement, found := strings.Cut(line, Delimiter)
	if !found {
		return "", "", false, ErrNoDelimiter
	}
	return pattern, replacement, true, nil
}

// Load reads rules from r in order. name identifies the source in
// diagnostics. Malformed lines are logged and skipped.
func Load(r io.Reader, name string, log Logger) (replace.RuleSet, error) {
	if log == nil {
		log = discard{}
	}

	var set replace.RuleSet
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		pattern, replacement, ok, err := ParseLine(line)
		if err != nil {
			log.Warnf("%s:%d: ignoring line, %v: %s", name, lineNo, err, line)
			continue
		}
		if !ok {
			continue
		}

		rule, err := replace.NewRule(pattern, replacement)
		if err != nil {
			var perr *replace.PatternError
			if errors.As(err, &perr) {
				perr.Origin = fmt.Sprintf("%s:%d", name, lineNo)
			}
			return nil, err
		}
		set = append(set, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return set, nil
}

// LoadFile loads rules from path. A file that cannot be opened means no
// custom rules are configured: present is false and err is nil.
func LoadFile(path string, log Logger) (set replace.RuleSet, present bool, err error) {
	if log == nil {
		log = discard{}
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warnf("cannot open rule file, continuing without custom rules: %v", err)
		}
		return nil, false, nil
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.IsDir() {
		log.Warnf("rule file %s is a directory, continuing without custom rules", path)
		return nil, false, nil
	}

	set, err = Load(f, filepath.Base(path), log)
	if err != nil {
		var perr *replace.PatternError
		if !errors.As(err, &perr) {
			log.Warnf("cannot read rule file, continuing without custom rules: %v", err)
			return nil, false, nil
		}
		return nil, true, err
	}
	return set, true, nil
}
