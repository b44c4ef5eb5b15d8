package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rshade/dexter/internal/pokeapi"
)

// colWidthName bounds the NAME column.
const colWidthName = 24

// selectedMark flags selected rows in the SEL column.
const selectedMark = "*"

// PokemonRow is the flattened, serialisable form of a list entry.
type PokemonRow struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Height   int      `json:"height"`
	Weight   int      `json:"weight"`
	Selected bool     `json:"selected"`
}

// NewPokemonRows flattens details, marking those selected reports true for.
// selected may be nil.
func NewPokemonRows(items []pokeapi.Detail, selected func(id int) bool) []PokemonRow {
	rows := make([]PokemonRow, 0, len(items))
	for _, d := range items {
		rows = append(rows, PokemonRow{
			ID:       d.ID,
			Name:     d.Name,
			Types:    d.TypeNames(),
			Height:   d.Height,
			Weight:   d.Weight,
			Selected: selected != nil && selected(d.ID),
		})
	}
	return rows
}

// RenderPokemonTable writes rows as an aligned table followed by footer, if
// footer is non-empty.
func RenderPokemonTable(w io.Writer, rows []PokemonRow, footer string) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintln(tw, "ID\tNAME\tTYPES\tHEIGHT\tWEIGHT\tSEL"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t----\t-----\t------\t------\t---"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}
	for _, r := range rows {
		sel := ""
		if r.Selected {
			sel = selectedMark
		}
		types := strings.Join(r.Types, ",")
		if types == "" {
			types = missingCell
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, truncate(r.Name, colWidthName), types,
			formatTenths(r.Height, "m"), formatTenths(r.Weight, "kg"), sel,
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if footer != "" {
		if _, err := fmt.Fprintf(tw, "\n%s\n", footer); err != nil {
			return fmt.Errorf("writing footer: %w", err)
		}
	}
	return tw.Flush()
}

// formatTenths renders the API's decimetre and hectogram units as metres and
// kilograms.
func formatTenths(v int, unit string) string {
	if v == 0 {
		return missingCell
	}
	return strconv.FormatFloat(float64(v)/10, 'f', 1, 64) + " " + unit
}

// RenderPokemonDetail writes a key/value description of d, with its base
// stats and details URL.
func RenderPokemonDetail(w io.Writer, d pokeapi.Detail, detailsURL string) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	lines := [][2]string{
		{"ID", strconv.Itoa(d.ID)},
		{"Name", d.Name},
		{"Types", joinOrMissing(d.TypeNames())},
		{"Abilities", joinOrMissing(d.AbilityNames())},
		{"Height", formatTenths(d.Height, "m")},
		{"Weight", formatTenths(d.Weight, "kg")},
	}
	if d.Sprites.FrontDefault != "" {
		lines = append(lines, [2]string{"Sprite", d.Sprites.FrontDefault})
	}
	if detailsURL != "" {
		lines = append(lines, [2]string{"Details URL", detailsURL})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", l[0], l[1]); err != nil {
			return fmt.Errorf("writing detail: %w", err)
		}
	}

	if len(d.Stats) > 0 {
		if _, err := fmt.Fprintln(tw, "\nSTAT\tBASE"); err != nil {
			return fmt.Errorf("writing stats header: %w", err)
		}
		for _, s := range d.Stats {
			if _, err := fmt.Fprintf(tw, "%s\t%d\n", s.Stat.Name, s.BaseStat); err != nil {
				return fmt.Errorf("writing stat: %w", err)
			}
		}
	}
	return tw.Flush()
}

func joinOrMissing(parts []string) string {
	if len(parts) == 0 {
		return missingCell
	}
	return strings.Join(parts, ", ")
}
