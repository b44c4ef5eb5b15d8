package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_Normalises(t *testing.T) {
	tests := []struct {
		name string
		a    Key
		b    Key
	}{
		{name: "trimmed strings", a: NewKey("pokemonDetails", " pikachu "), b: NewKey("pokemonDetails", "pikachu")},
		{name: "int and int64", a: NewKey("pokemonList", 1, 20), b: NewKey("pokemonList", int64(1), int64(20))},
		{name: "int and numeric string", a: NewKey("pokemonList", 3), b: NewKey("pokemonList", "3")},
		{name: "trimmed scope", a: NewKey(" co2Dataset "), b: NewKey("co2Dataset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a, tt.b)
		})
	}
}

func TestNewKey_TooManyArgsPanics(t *testing.T) {
	assert.Panics(t, func() { NewKey("x", 1, 2, 3, 4, 5) })
	assert.NotPanics(t, func() { NewKey("x", 1, 2, 3, 4) })
}

func TestKey_HasPrefix(t *testing.T) {
	full := NewKey("pokemonList", 2, 20)

	tests := []struct {
		name   string
		prefix Key
		want   bool
	}{
		{name: "scope only", prefix: NewKey("pokemonList"), want: true},
		{name: "first arg", prefix: NewKey("pokemonList", 2), want: true},
		{name: "identical", prefix: full, want: true},
		{name: "different arg", prefix: NewKey("pokemonList", 3), want: false},
		{name: "different scope", prefix: NewKey("pokemonDetails"), want: false},
		{name: "longer than key", prefix: NewKey("pokemonList", 2, 20, "x"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, full.HasPrefix(tt.prefix))
		})
	}
}

func TestKey_StringRoundTrip(t *testing.T) {
	keys := []Key{
		NewKey("pokemonList", 1, 20),
		NewKey("pokemonDetails", "mr. mime"),
		NewKey("co2Dataset", "https://example.com/owid-co2-data.json"),
		NewKey("scope"),
	}
	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			parsed, err := ParseKey(k.String())
			require.NoError(t, err)
			assert.Equal(t, k, parsed)
		})
	}

	assert.Equal(t, "pokemonList/1/20", NewKey("pokemonList", 1, 20).String())
}

func TestParseKey_Errors(t *testing.T) {
	_, err := ParseKey("")
	require.ErrorIs(t, err, ErrInvalidCacheKey)

	_, err = ParseKey("a/1/2/3/4/5")
	require.ErrorIs(t, err, ErrInvalidCacheKey)

	_, err = ParseKey("a/%zz")
	require.ErrorIs(t, err, ErrInvalidCacheKey)
}

func TestKey_Accessors(t *testing.T) {
	k := NewKey("pokemonList", 1, 20)
	assert.Equal(t, "pokemonList", k.Scope())
	assert.Equal(t, []string{"1", "20"}, k.Args())
	assert.False(t, k.IsZero())
	assert.True(t, Key{}.IsZero())
}
