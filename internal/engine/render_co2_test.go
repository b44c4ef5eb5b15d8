package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/co2"
)

const co2Fixture = `{
  "France": {"iso_code": "FRA", "data": [
    {"year": 2022, "population": 67000000, "co2": 300.1, "co2_per_capita": 4.48},
    {"year": 2023, "population": 67100000, "co2": 290.2, "co2_per_capita": 4.32}
  ]},
  "Europe": {"data": [
    {"year": 2023, "co2": 4700}
  ]}
}`

func co2Dataset(t *testing.T) *co2.Dataset {
	t.Helper()
	ds, err := co2.Decode(strings.NewReader(co2Fixture))
	require.NoError(t, err)
	return ds
}

func TestRenderCO2Table(t *testing.T) {
	ds := co2Dataset(t)
	sort := co2.SortState{Column: co2.ColCO2, Direction: co2.DirectionDesc}
	rows := co2.Derive(ds, co2.Query{Year: 2023, Sort: sort})
	hl := co2.Highlights{"France": {co2.ColCO2}}

	var buf bytes.Buffer
	require.NoError(t, RenderCO2Table(&buf, rows, co2.BaseColumns, sort, hl))
	lines := strings.Split(buf.String(), "\n")

	assert.Contains(t, lines[0], "COUNTRY"+co2.IndicatorUnsorted)
	assert.Contains(t, lines[0], "CO2"+co2.IndicatorDesc)
	assert.Contains(t, lines[1], "Europe")
	assert.Contains(t, lines[1], "N/A")
	assert.Contains(t, lines[2], "France")
	assert.Contains(t, lines[2], "FRA")
	assert.Contains(t, lines[2], "67,100,000")
	assert.Contains(t, lines[2], "290.20 *")
	assert.Contains(t, buf.String(), "Showing 2 countries")
}

func TestNewCO2Rows(t *testing.T) {
	ds := co2Dataset(t)
	rows := co2.Derive(ds, co2.Query{Year: 2023, Search: "fra"})
	got := NewCO2Rows(rows, []co2.Column{co2.ColCO2}, 2023, co2.Highlights{"France": {co2.ColCO2}})

	require.Len(t, got, 1)
	assert.Equal(t, "France", got[0].Country)
	assert.Equal(t, 2023, got[0].Year)
	require.NotNil(t, got[0].Metrics["co2"])
	assert.InDelta(t, 290.2, *got[0].Metrics["co2"], 1e-9)
	assert.Equal(t, []string{"co2"}, got[0].Changed)
}

func TestRenderCO2History_NewestFirst(t *testing.T) {
	ds := co2Dataset(t)
	france, ok := ds.Country("France")
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, RenderCO2History(&buf, france, []co2.Column{co2.ColCO2}))
	lines := strings.Split(buf.String(), "\n")

	assert.True(t, strings.HasPrefix(lines[1], "2023"))
	assert.True(t, strings.HasPrefix(lines[2], "2022"))
}

func TestRenderEquivalency(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEquivalency(&buf, co2.Equivalency{IsEmpty: true}))
	assert.Contains(t, buf.String(), "No CO2 emissions")

	eq, err := co2.Equivalent(1)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, RenderEquivalency(&buf, eq))
	assert.Contains(t, buf.String(), "Equivalent to driving")
}
