package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/cli"
)

type co2TableDoc struct {
	Year int `json:"year"`
	Rows []struct {
		Country string              `json:"country"`
		Region  string              `json:"region"`
		Metrics map[string]*float64 `json:"metrics"`
		Changed []string            `json:"changed"`
	} `json:"rows"`
	Pagination *struct {
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

func countries(doc co2TableDoc) []string {
	out := make([]string, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		out = append(out, r.Country)
	}
	return out
}

func TestCO2Table_Default(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "co2", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "COUNTRY")
	assert.Contains(t, out, "France")
	assert.Contains(t, out, "1,450.25")
	assert.Contains(t, out, "Showing 3 countries")
}

func TestCO2Table_SortAndRegion(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "co2", "table", "--sort", "co2:desc", "--output", "json")
	require.NoError(t, err)
	var doc co2TableDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2023, doc.Year)
	assert.Equal(t, []string{"Africa", "Germany", "France"}, countries(doc))

	out, _, err = runCLI(t, "co2", "table", "--region", "Africa", "--search", "AF", "--output", "json")
	require.NoError(t, err)
	doc = co2TableDoc{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"Africa"}, countries(doc))
	assert.Equal(t, "Africa", doc.Rows[0].Region)
}

func TestCO2Table_CompareYearAndColumns(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "co2", "table", "--compare-year", "2022", "--columns", "methane", "--output", "json")
	require.NoError(t, err)
	var doc co2TableDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	byName := make(map[string]int)
	for i, r := range doc.Rows {
		byName[r.Country] = i
	}
	france := doc.Rows[byName["France"]]
	assert.Contains(t, france.Changed, "co2")
	assert.NotContains(t, france.Changed, "methane")
	require.Contains(t, france.Metrics, "methane")
	assert.InDelta(t, 60.0, *france.Metrics["methane"], 0.001)
	assert.Empty(t, doc.Rows[byName["Africa"]].Changed, "no 2022 record to compare")
}

func TestCO2Table_Paged(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "co2", "table", "--page", "2", "--page-size", "2", "--output", "json")
	require.NoError(t, err)
	var doc co2TableDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"Germany"}, countries(doc))
	require.NotNil(t, doc.Pagination)
	assert.Equal(t, 2, doc.Pagination.TotalPages)
}

func TestCO2Table_InvalidInput(t *testing.T) {
	setupCLITest(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown sort column", []string{"--sort", "nope"}, "unknown column"},
		{"bad direction", []string{"--sort", "co2:up"}, "asc"},
		{"base column as optional", []string{"--columns", "co2"}, "always shown"},
		{"missing year", []string{"--year", "1900"}, "no data for year"},
		{"unknown region", []string{"--region", "Atlantis"}, "unknown region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, append([]string{"co2", "table"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
		})
	}
}

func TestCO2Table_MissingDataset(t *testing.T) {
	setupCLITest(t)

	_, _, err := runCLI(t, "co2", "table", "--dataset", "does-not-exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load CO2 dataset")
}

func TestCO2Show(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "co2", "show", "France")
	require.NoError(t, err)
	assert.Contains(t, out, "France (FRA)")
	assert.Less(t, strings.Index(out, "2023"), strings.Index(out, "2022"), "newest year first")
	assert.Contains(t, out, "Equivalent to driving")

	out, _, err = runCLI(t, "co2", "show", "Germany", "--year", "1990")
	require.NoError(t, err)
	assert.Contains(t, out, "No CO2 data for this year.")

	_, _, err = runCLI(t, "co2", "show", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown country")
}

func TestCO2Browse_NeedsTerminal(t *testing.T) {
	setupCLITest(t)

	_, _, err := runCLI(t, "co2", "browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}
