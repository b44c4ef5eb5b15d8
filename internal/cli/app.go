package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/co2"
	"github.com/rshade/dexter/internal/config"
	"github.com/rshade/dexter/internal/engine"
	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/engine/query"
	"github.com/rshade/dexter/internal/logging"
	"github.com/rshade/dexter/internal/pokeapi"
	"github.com/rshade/dexter/internal/selection"
)

// app holds the collaborators a command needs, built from the global config.
type app struct {
	cfg      *config.Config
	cache    *cache.Cache
	co2Cache *cache.Cache
	api      *pokeapi.Client
	svc      *query.Service
	co2      *co2.Loader
	exporter *selection.Exporter
}

// newApp wires the API client, the query cache and the dataset loader.
// Callers must Close the result.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg := config.GetGlobalConfig()
	log := logging.ComponentLogger(logger, "app")

	disk, err := cache.NewDiskStore(cfg.Cache.Disk.Directory, cfg.Cache.Disk.Enabled, cfg.Cache.StaleTime.Std())
	if err != nil {
		log.Warn().Ctx(cmd.Context()).Err(err).Msg("disk cache unavailable, continuing in memory")
		disk = nil
	}

	api, err := pokeapi.NewClient(cfg.API.BaseURL,
		pokeapi.WithTimeout(cfg.API.Timeout.Std()),
		pokeapi.WithUserAgent(cfg.API.UserAgent),
		pokeapi.WithLogger(logging.ComponentLogger(logger, "pokeapi")),
	)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	c := cache.New(cache.Options{
		StaleTime: cfg.Cache.StaleTime.Std(),
		GCTime:    cfg.Cache.GCTime.Std(),
		Disk:      disk,
		Logger:    logging.ComponentLogger(logger, "cache"),
	})
	// The CO2 dataset is too large to mirror into JSON cache files.
	co2Cache := cache.New(cache.Options{
		StaleTime: cfg.Cache.StaleTime.Std(),
		GCTime:    cfg.Cache.GCTime.Std(),
		Logger:    logging.ComponentLogger(logger, "co2"),
	})

	return &app{
		cfg:      cfg,
		cache:    c,
		co2Cache: co2Cache,
		api:      api,
		svc: query.NewService(c, api, query.Options{
			FanoutLimit: cfg.Query.FanoutLimit,
			Logger:      logger,
		}),
		co2:      co2.NewLoader(co2Cache),
		exporter: selection.NewExporter(api.BaseURL()),
	}, nil
}

// Close stops both caches.
func (a *app) Close() {
	a.cache.Close()
	a.co2Cache.Close()
}

// outputFormat reads the persistent --output flag.
func outputFormat(cmd *cobra.Command) (engine.OutputFormat, error) {
	raw, _ := cmd.Flags().GetString("output")
	return engine.ParseOutputFormat(raw)
}

// render writes items in the selected format; table falls back to renderTable.
func render[T any](w io.Writer, format engine.OutputFormat, items []T, doc any, renderTable func() error) error {
	switch format {
	case engine.OutputJSON:
		return engine.RenderJSON(w, doc)
	case engine.OutputNDJSON:
		return engine.RenderNDJSON(w, items)
	default:
		return renderTable()
	}
}
