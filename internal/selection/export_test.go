package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	out, err := NewExporter("").Export([]Item{bulbasaur, charmander})
	require.NoError(t, err)

	want := "ID,Name,Description,Details URL\n" +
		"1,bulbasaur,\"Type: grass,poison\",https://pokeapi.co/api/v2/pokemon/1/\n" +
		"4,charmander,Type: fire,https://pokeapi.co/api/v2/pokemon/4/"
	assert.Equal(t, want, out.Content)
	assert.Equal(t, "2_items.csv", out.Filename)
	assert.Equal(t, "text/csv;charset=utf-8;", out.MimeType)
}

func TestExport_Empty(t *testing.T) {
	out, err := NewExporter("").Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Description,Details URL", out.Content)
	assert.Equal(t, "0_items.csv", out.Filename)
}

func TestExporter_DetailsURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/api/pokemon/7/", NewExporter("http://localhost:8080/api/").DetailsURL(7))
}
