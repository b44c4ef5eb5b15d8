package co2

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureJSON = `{
  "Africa": {"data": [
    {"year": 2022, "population": 1400000000, "co2": 1400.5},
    {"year": 2023, "population": 1430000000, "co2": 1450.25}
  ]},
  "France": {"iso_code": "FRA", "data": [
    {"year": 2022, "population": 67000000, "co2": 300.1, "co2_per_capita": 4.48, "methane": 60},
    {"year": 2023, "population": 67100000, "co2": 290.2, "co2_per_capita": 4.32, "methane": 60}
  ]},
  "Germany": {"iso_code": "DEU", "data": [
    {"year": 2023, "population": 83000000, "co2": 596.0, "co2_per_capita": 7.1}
  ]},
  "Europe": {"data": [
    {"year": 2022, "co2": 4800},
    {"year": 2023, "co2": 4700}
  ]},
  "South America": {"data": [
    {"year": 2023, "co2": 1100}
  ]},
  "Nowhere": {"iso_code": "NWH", "data": [
    {"population": 5},
    {"year": 0, "population": 6}
  ]}
}`

func fixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Decode(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	return ds
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func ptr(v float64) *float64 { return &v }
