package pokeapi

import "strings"

// Summary is one entry of a list page.
type Summary struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPage is the list endpoint's response.
type ListPage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next,omitempty"`
	Previous *string   `json:"previous,omitempty"`
	Results  []Summary `json:"results"`
}

// NamedRef is the API's {name, url} reference shape.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// TypeSlot is one of a Pokémon's types.
type TypeSlot struct {
	Slot int      `json:"slot"`
	Type NamedRef `json:"type"`
}

// AbilitySlot is one of a Pokémon's abilities.
type AbilitySlot struct {
	Ability  NamedRef `json:"ability"`
	IsHidden bool     `json:"is_hidden"`
	Slot     int      `json:"slot"`
}

// StatValue is a base stat.
type StatValue struct {
	BaseStat int      `json:"base_stat"`
	Effort   int      `json:"effort"`
	Stat     NamedRef `json:"stat"`
}

// Sprites holds the sprite URLs dexter uses.
type Sprites struct {
	FrontDefault string `json:"front_default"`
}

// Detail is a full Pokémon record.
type Detail struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Height    int           `json:"height,omitempty"`
	Weight    int           `json:"weight,omitempty"`
	Types     []TypeSlot    `json:"types"`
	Sprites   Sprites       `json:"sprites"`
	Abilities []AbilitySlot `json:"abilities"`
	Stats     []StatValue   `json:"stats"`
}

// TypeNames returns the type names in slot order.
func (d Detail) TypeNames() []string {
	out := make([]string, 0, len(d.Types))
	for _, t := range d.Types {
		out = append(out, t.Type.Name)
	}
	return out
}

// AbilityNames returns the ability names in slot order.
func (d Detail) AbilityNames() []string {
	out := make([]string, 0, len(d.Abilities))
	for _, a := range d.Abilities {
		out = append(out, a.Ability.Name)
	}
	return out
}

// Stat returns the base value of the named stat and whether it exists.
func (d Detail) Stat(name string) (int, bool) {
	for _, s := range d.Stats {
		if strings.EqualFold(s.Stat.Name, name) {
			return s.BaseStat, true
		}
	}
	return 0, false
}

// NormalizeTerm is the canonical form of a search term or id: trimmed and
// lowercased.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
