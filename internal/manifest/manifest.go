// Package manifest records what a conversion wrote, so a later run or a
// downstream synthesiser can tell which chapters changed.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// Entry describes one converted chapter. Paths are relative to the output
// directory.
type Entry struct {
	Ordinal     int    `json:"ordinal"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	TitleSource string `json:"title_source"`
	Text        string `json:"text"`
	TitleFile   string `json:"title_file"`
	HTML        string `json:"html,omitempty"`
	Original    string `json:"original,omitempty"`
	Hash        string `json:"hash"`
}

// Manifest lists the chapters of one conversion in write order.
type Manifest struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Cover    string  `json:"cover,omitempty"`
	Chapters []Entry `json:"chapters"`

	mu sync.Mutex
}

// New returns an empty manifest for a book.
func New(title, author string) *Manifest {
	return &Manifest{Title: title, Author: author}
}

// Hash returns the content hash stored for a chapter's text.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Add appends a chapter entry.
func (m *Manifest) Add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chapters = append(m.Chapters, e)
}

// Hashes maps each chapter's text path to its hash.
func (m *Manifest) Hashes() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.Chapters))
	for _, e := range m.Chapters {
		out[e.Text] = e.Hash
	}
	return out
}

// Save writes the manifest to dir/manifest.json.
func (m *Manifest) Save(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), append(data, '\n'), 0644)
}

// Load reads dir/manifest.json. A missing file yields (nil, nil).
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
