package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/co2"
)

const co2TestJSON = `{
  "France": {"iso_code": "FRA", "data": [
    {"year": 2022, "population": 67000000, "co2": 300.1, "co2_per_capita": 4.48, "methane": 60},
    {"year": 2023, "population": 67100000, "co2": 290.2, "co2_per_capita": 4.32, "methane": 60}
  ]},
  "Germany": {"iso_code": "DEU", "data": [
    {"year": 2022, "population": 83000000, "co2": 620.0, "co2_per_capita": 7.4},
    {"year": 2023, "population": 83000000, "co2": 596.0, "co2_per_capita": 7.1}
  ]},
  "Africa": {"data": [
    {"year": 2023, "population": 1430000000, "co2": 1450.25}
  ]}
}`

func newCO2Browser(t *testing.T, opts CO2Options) CO2Model {
	t.Helper()
	if opts.Load == nil {
		opts.Load = func(context.Context) (*co2.Dataset, error) {
			return co2.Decode(strings.NewReader(co2TestJSON))
		}
	}
	m := NewCO2Model(context.Background(), opts)
	for _, msg := range collect(m.Init()) {
		if loaded, ok := msg.(datasetLoadedMsg); ok {
			next, _ := m.Update(loaded)
			m = next.(CO2Model)
		}
	}
	t.Cleanup(m.Close)
	return m
}

func pressCO2(m CO2Model, keys ...tea.KeyMsg) CO2Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(CO2Model)
	}
	return m
}

func rowNames(rows []co2.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestCO2Model_Loads(t *testing.T) {
	m := newCO2Browser(t, CO2Options{})

	require.Equal(t, ViewStateList, m.state)
	assert.Equal(t, 2023, m.Table().Query().Year)
	assert.Equal(t, []string{"Africa", "France", "Germany"}, rowNames(m.rows))
	view := m.View()
	assert.Contains(t, view, "CO2 EMISSIONS 2023")
	assert.Contains(t, view, "Showing 3 countries")
}

func TestCO2Model_FallsBackToNewestYear(t *testing.T) {
	m := newCO2Browser(t, CO2Options{Year: 1990})
	assert.Equal(t, 2023, m.Table().Query().Year)
}

func TestCO2Model_LoadError(t *testing.T) {
	m := newCO2Browser(t, CO2Options{Load: func(context.Context) (*co2.Dataset, error) {
		return nil, co2.ErrDatasetLoad
	}})
	assert.Equal(t, ViewStateError, m.state)
	assert.Contains(t, m.View(), "failed to load CO2 dataset")
}

func TestCO2Model_YearChangeHighlights(t *testing.T) {
	m := newCO2Browser(t, CO2Options{Delay: 20 * time.Millisecond})

	next, cmd := m.Update(runes("["))
	m = next.(CO2Model)
	assert.Equal(t, 2022, m.Table().Query().Year)
	require.NotNil(t, cmd)

	hl := m.Table().Highlighter().Current()
	assert.True(t, hl.Has("France", co2.ColCO2))
	assert.False(t, hl.Has("France", co2.ColMethane))
	assert.Contains(t, m.View(), "changed since last year")

	msg := cmd()
	assert.IsType(t, highlightExpiredMsg{}, msg)
	next, _ = m.Update(msg)
	m = next.(CO2Model)
	assert.Empty(t, m.Table().Highlighter().Current())
	assert.NotContains(t, m.View(), "changed since last year")

	m = pressCO2(m, runes("["))
	assert.Equal(t, 2022, m.Table().Query().Year, "no year before the oldest")
	m = pressCO2(m, runes("]"))
	assert.Equal(t, 2023, m.Table().Query().Year)
}

func TestCO2Model_SortOnFocusedColumn(t *testing.T) {
	m := newCO2Browser(t, CO2Options{})

	// Country, ISO, Region, Population, CO2.
	m = pressCO2(m,
		tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight},
		runes("s"), runes("s"))

	assert.Equal(t, co2.SortState{Column: co2.ColCO2, Direction: co2.DirectionDesc}, m.Table().Query().Sort)
	assert.Equal(t, []string{"Africa", "Germany", "France"}, rowNames(m.rows))
	assert.Contains(t, m.status, "co2:desc")
}

func TestCO2Model_RegionAndSearch(t *testing.T) {
	m := newCO2Browser(t, CO2Options{})

	m = pressCO2(m, runes("g"))
	assert.Equal(t, co2.RegionAfrica, m.Table().Query().Region)
	assert.Equal(t, []string{"Africa"}, rowNames(m.rows))

	for range len(m.regions) - 1 {
		m = pressCO2(m, runes("g"))
	}
	assert.Equal(t, co2.RegionAll, m.Table().Query().Region)

	m = pressCO2(m, runes("/"), runes("ger"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"Germany"}, rowNames(m.rows))

	m = pressCO2(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.rows, 3)
}

func TestCO2Model_ToggleOptionalColumn(t *testing.T) {
	m := newCO2Browser(t, CO2Options{})

	m = pressCO2(m, runes("1"))
	assert.Contains(t, m.Table().Columns(), co2.ColMethane)
	assert.Contains(t, m.View(), "1[x] methane")

	m = pressCO2(m, runes("1"))
	assert.NotContains(t, m.Table().Columns(), co2.ColMethane)
}

func TestCO2Model_Equivalency(t *testing.T) {
	m := newCO2Browser(t, CO2Options{Search: "France"})
	require.Equal(t, []string{"France"}, rowNames(m.rows))

	m = pressCO2(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewStateDetail, m.state)
	assert.Contains(t, m.View(), "Equivalent to driving")

	m = pressCO2(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewStateList, m.state)
}

func TestCO2Model_Quit(t *testing.T) {
	m := newCO2Browser(t, CO2Options{})
	next, cmd := m.Update(runes("q"))
	assert.Equal(t, ViewStateQuitting, next.(CO2Model).state)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCO2Model_NoLoader(t *testing.T) {
	m := NewCO2Model(context.Background(), CO2Options{})
	var loaded datasetLoadedMsg
	for _, msg := range collect(m.Init()) {
		if l, ok := msg.(datasetLoadedMsg); ok {
			loaded = l
		}
	}
	require.Error(t, loaded.err)
	assert.False(t, errors.Is(loaded.err, co2.ErrDatasetLoad))
}
