package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rshade/dexter/internal/config"
)

// FileName is the selection file name inside the dexter home directory.
const FileName = "selection.yaml"

type fileFormat struct {
	Items []Item `yaml:"items"`
}

// DefaultPath returns the default selection file path.
func DefaultPath() string {
	return filepath.Join(config.HomeDir(), FileName)
}

// Load reads a store from path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStore(), nil
		}
		return nil, fmt.Errorf("reading selection %s: %w", path, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing selection %s: %w", path, err)
	}
	return NewStore(f.Items...), nil
}

// Save writes s to path atomically, creating directories as needed.
func Save(path string, s *Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating selection directory: %w", err)
	}
	data, err := yaml.Marshal(fileFormat{Items: s.Items()})
	if err != nil {
		return fmt.Errorf("marshalling selection: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing selection: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming selection: %w", err)
	}
	return nil
}
