package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshade/dexter/internal/cli"
	"github.com/rshade/dexter/internal/config"
	"github.com/rshade/dexter/internal/pokeapi"
)

// roster is the fake API's Pokédex.
//
//nolint:gochecknoglobals // Shared fixture.
var roster = []pokeapi.Detail{
	{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69, Types: []pokeapi.TypeSlot{
		{Slot: 1, Type: pokeapi.NamedRef{Name: "grass"}},
		{Slot: 2, Type: pokeapi.NamedRef{Name: "poison"}},
	}},
	{ID: 2, Name: "ivysaur", Height: 10, Weight: 130, Types: []pokeapi.TypeSlot{
		{Slot: 1, Type: pokeapi.NamedRef{Name: "grass"}},
	}},
	{ID: 3, Name: "venusaur", Height: 20, Weight: 1000, Types: []pokeapi.TypeSlot{
		{Slot: 1, Type: pokeapi.NamedRef{Name: "grass"}},
	}},
}

const co2Fixture = `{
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

// fakeAPI serves the list and detail endpoints for roster.
func fakeAPI(t *testing.T) string {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v2/"), "/")
		if path == "pokemon" {
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			page := pokeapi.ListPage{Count: len(roster)}
			for i := offset; i < len(roster) && i < offset+limit; i++ {
				page.Results = append(page.Results, pokeapi.Summary{
					Name: roster[i].Name,
					URL:  server.URL + "/api/v2/pokemon/" + strconv.Itoa(roster[i].ID) + "/",
				})
			}
			_ = json.NewEncoder(w).Encode(page)
			return
		}
		term := strings.TrimPrefix(path, "pokemon/")
		for _, d := range roster {
			if term == d.Name || term == strconv.Itoa(d.ID) {
				_ = json.NewEncoder(w).Encode(d)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/api/v2"
}

// setupCLITest isolates dexter's home, points it at a fake API and a local
// CO2 dataset, and resets the global config afterwards.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvAPIBaseURL, fakeAPI(t))
	t.Setenv("DEXTER_CACHE_DISK_ENABLED", "false")

	dataset := filepath.Join(home, "co2.json")
	require.NoError(t, os.WriteFile(dataset, []byte(co2Fixture), 0o600))
	t.Setenv(config.EnvCO2Dataset, dataset)

	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// runCLI executes the root command and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
