// Package prefs persists dexter's user preferences, currently the last search
// term, in $DEXTER_HOME/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rshade/dexter/internal/config"
)

// FileName is the preferences file name inside the dexter home directory.
const FileName = "prefs.toml"

// Prefs holds user preferences.
type Prefs struct {
	SearchTerm string `toml:"search_term"`
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return filepath.Join(config.HomeDir(), FileName)
}

// Load reads preferences from path, or DefaultPath when path is empty.
// A missing, unreadable or corrupt file yields the defaults.
func Load(path string) Prefs {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prefs{}
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}
	}
	return p
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Session keeps preferences in memory and writes them back on every change.
type Session struct {
	path string

	mu    sync.Mutex
	prefs Prefs
}

// Open loads preferences from path into a Session.
func Open(path string) *Session {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Session{path: path, prefs: Load(path)}
}

// SearchTerm returns the persisted search term.
func (s *Session) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.SearchTerm
}

// SetSearchTerm stores term and saves it if it changed.
func (s *Session) SetSearchTerm(term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs.SearchTerm == term {
		return nil
	}
	next := s.prefs
	next.SearchTerm = term
	if err := Save(s.path, next); err != nil {
		return fmt.Errorf("persist search term: %w", err)
	}
	s.prefs = next
	return nil
}

// Path returns the file the session writes to.
func (s *Session) Path() string {
	return s.path
}
