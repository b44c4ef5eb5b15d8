package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rshade/dexter/internal/co2"
)

// changedMark follows a cell whose value differs from the compared year.
const changedMark = " *"

// CO2Row is the serialisable form of a table row. Metrics maps column names
// to values; absent values are null.
type CO2Row struct {
	Country string              `json:"country"`
	ISOCode string              `json:"iso_code,omitempty"`
	Region  string              `json:"region,omitempty"`
	Year    int                 `json:"year"`
	Metrics map[string]*float64 `json:"metrics"`
	Changed []string            `json:"changed,omitempty"`
}

// NewCO2Rows flattens rows for serialisation, limited to cols.
func NewCO2Rows(rows []co2.Row, cols []co2.Column, year int, hl co2.Highlights) []CO2Row {
	out := make([]CO2Row, 0, len(rows))
	for _, r := range rows {
		metrics := make(map[string]*float64, len(cols))
		for _, c := range cols {
			metrics[string(c)] = r.Value(c)
		}
		var changed []string
		for _, c := range hl[r.Name] {
			changed = append(changed, string(c))
		}
		out = append(out, CO2Row{
			Country: r.Name,
			ISOCode: r.ISOCode,
			Region:  r.Region,
			Year:    year,
			Metrics: metrics,
			Changed: changed,
		})
	}
	return out
}

// RenderCO2Table writes rows with a COUNTRY, ISO and REGION column followed
// by cols. Headers carry the sort indicator; cells in hl are marked with
// " *".
func RenderCO2Table(
	w io.Writer,
	rows []co2.Row,
	cols []co2.Column,
	sort co2.SortState,
	hl co2.Highlights,
) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	header := []string{
		"COUNTRY" + sort.Indicator(co2.ColName),
		"ISO" + sort.Indicator(co2.ColISOCode),
		"REGION" + sort.Indicator(co2.ColRegion),
	}
	for _, c := range cols {
		header = append(header, c.Title()+sort.Indicator(c))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range rows {
		cells := []string{truncate(r.Name, colWidthName), orMissing(r.ISOCode), orMissing(r.Region)}
		for _, c := range cols {
			cell := co2.FormatCell(c, r.Value(c))
			if hl.Has(r.Name, c) {
				cell += changedMark
			}
			cells = append(cells, cell)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if _, err := fmt.Fprintf(tw, "\nShowing %d countries\n", len(rows)); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	return tw.Flush()
}

// RenderCO2History writes one line per year for country, newest first.
func RenderCO2History(w io.Writer, country co2.Country, cols []co2.Column) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	header := []string{"YEAR"}
	for _, c := range cols {
		header = append(header, c.Title())
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := len(country.Records) - 1; i >= 0; i-- {
		rec := country.Records[i]
		cells := []string{strconv.Itoa(rec.Year)}
		for _, c := range cols {
			cells = append(cells, co2.FormatCell(c, rec.Value(c)))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

// RenderEquivalency writes the everyday equivalents of an emission.
func RenderEquivalency(w io.Writer, eq co2.Equivalency) error {
	if eq.IsEmpty {
		_, err := fmt.Fprintln(w, "No CO2 emissions to compare.")
		return err
	}
	if _, err := fmt.Fprintln(w, eq.DisplayText); err != nil {
		return fmt.Errorf("writing equivalency: %w", err)
	}
	for _, r := range eq.Results {
		if _, err := fmt.Fprintf(w, "  %s %s\n", r.FormattedValue, r.Label); err != nil {
			return fmt.Errorf("writing equivalency: %w", err)
		}
	}
	return nil
}

func orMissing(s string) string {
	if s == "" {
		return missingCell
	}
	return s
}
