package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/config"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	require.NoError(t, Save(path, NewStore(squirtle, bulbasaur)))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Item{squirtle, bulbasaur}, s.Items())
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("items: {not: [a list"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	assert.Equal(t, filepath.Join(home, FileName), DefaultPath())
}
