package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/dexter/internal/config"
	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms.
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the dexter CLI.
// It loads configuration, wires logging and tracing, and registers the
// pokemon, co2, form and config command groups.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "dexter",
		Short:         "Browse Pokémon and CO2 emissions data from the terminal",
		Long:          "dexter: a cached Pokémon browser, a CO2 emissions table and a registration form validator",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file to merge over ~/.dexter/config.yaml")
	cmd.PersistentFlags().String("stale-time", "",
		"how long cached data stays fresh, as seconds or a duration (overrides config and env)")
	cmd.PersistentFlags().String("output", "table", "output format: table, json or ndjson")

	cmd.AddCommand(newPokemonCmd(), newCO2Cmd(), newFormCmd(), newConfigCmd())
	return cmd
}

// loadConfig resolves the process configuration: the default file, then the
// --config overlay, then --stale-time.
func loadConfig(cmd *cobra.Command) error {
	cfg := config.New()

	if overlay, _ := cmd.Flags().GetString("config"); overlay != "" {
		if err := config.ShallowMergeYAML(cfg, overlay); err != nil {
			return fmt.Errorf("loading --config %s: %w", overlay, err)
		}
	}

	if raw, _ := cmd.Flags().GetString("stale-time"); raw != "" {
		d, err := cache.ParseWindow(raw)
		if err != nil {
			return fmt.Errorf("--stale-time: %w", err)
		}
		cfg.Cache.StaleTime = config.Duration(d)
	}

	// The config group must still run against a broken file so it can be fixed.
	if !isConfigCmd(cmd) {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	config.SetGlobalConfig(cfg)
	return nil
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.HasParent() && !c.Parent().HasParent() {
			return true
		}
	}
	return false
}

const rootCmdExample = `  # List the first page of Pokémon
  dexter pokemon list

  # Show one Pokémon by name or id
  dexter pokemon show pikachu

  # Select Pokémon and export them as CSV
  dexter pokemon select add 1 4 7
  dexter pokemon export -o starters.csv

  # Browse interactively
  dexter pokemon browse

  # CO2 emissions for European countries in 2020, highest first
  dexter co2 table --year 2020 --region Europe --sort co2:desc

  # Validate a registration form
  dexter form validate signup.yaml

  # Initialize configuration
  dexter config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
