package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/pokeapi"
)

func bulbasaur() pokeapi.Detail {
	return pokeapi.Detail{
		ID:     1,
		Name:   "bulbasaur",
		Height: 7,
		Weight: 69,
		Types: []pokeapi.TypeSlot{
			{Slot: 1, Type: pokeapi.NamedRef{Name: "grass"}},
			{Slot: 2, Type: pokeapi.NamedRef{Name: "poison"}},
		},
		Abilities: []pokeapi.AbilitySlot{{Ability: pokeapi.NamedRef{Name: "overgrow"}, Slot: 1}},
		Stats:     []pokeapi.StatValue{{BaseStat: 45, Stat: pokeapi.NamedRef{Name: "hp"}}},
	}
}

func TestNewPokemonRows_MarksSelected(t *testing.T) {
	items := []pokeapi.Detail{bulbasaur(), {ID: 4, Name: "charmander"}}
	rows := NewPokemonRows(items, func(id int) bool { return id == 4 })

	require.Len(t, rows, 2)
	assert.False(t, rows[0].Selected)
	assert.Equal(t, []string{"grass", "poison"}, rows[0].Types)
	assert.True(t, rows[1].Selected)

	rows = NewPokemonRows(items, nil)
	assert.False(t, rows[1].Selected)
}

func TestRenderPokemonTable(t *testing.T) {
	rows := NewPokemonRows([]pokeapi.Detail{bulbasaur(), {ID: 4, Name: "charmander"}},
		func(id int) bool { return id == 1 })

	var buf bytes.Buffer
	require.NoError(t, RenderPokemonTable(&buf, rows, "Page 1 of 33"))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "NAME")
	assert.True(t, strings.HasPrefix(lines[1], "--"))
	assert.Contains(t, lines[2], "bulbasaur")
	assert.Contains(t, lines[2], "grass,poison")
	assert.Contains(t, lines[2], "0.7 m")
	assert.Contains(t, lines[2], "6.9 kg")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[2]), "*"))
	assert.Contains(t, lines[3], "charmander")
	assert.False(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "*"))
	assert.Contains(t, out, "Page 1 of 33")
}

func TestRenderPokemonDetail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPokemonDetail(&buf, bulbasaur(), "https://pokeapi.co/api/v2/pokemon/1/"))
	out := buf.String()

	assert.Contains(t, out, "bulbasaur")
	assert.Contains(t, out, "grass, poison")
	assert.Contains(t, out, "overgrow")
	assert.Contains(t, out, "https://pokeapi.co/api/v2/pokemon/1/")
	assert.Contains(t, out, "STAT")
	assert.Contains(t, out, "hp")
	assert.NotContains(t, out, "Sprite")
}
