package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/config"
	"github.com/rshade/dexter/internal/engine/cache"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file for syntax and semantic correctness.

This includes:
- YAML syntax of the config file
- Non-empty API base URL and CO2 dataset source
- Positive page size and fan-out limit
- A cache stale time that does not exceed the garbage-collection time`,
		Example: `  # Validate current configuration
  dexter config validate

  # Validate and show detailed information
  dexter config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.New()
	if _, statErr := os.Stat(config.Path()); statErr == nil {
		loaded, err := config.Load(config.Path())
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		cfg = loaded
	} else {
		cmd.Printf("No configuration file at %s, checking defaults\n", config.Path())
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	warned := false
	if cfg.Cache.StaleTime.Std() > cfg.Cache.GCTime.Std() {
		cmd.Println("Warning: cache.stale_time exceeds cache.gc_time; entries are dropped before they go stale")
		warned = true
	}
	if cfg.Cache.StaleTime.Std() == 0 {
		cmd.Println("Warning: cache.stale_time is 0; every read refetches")
		warned = true
	}

	if warned {
		cmd.Println()
	}
	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.FilePath())
	cmd.Printf("  API base URL: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout.Std())
	cmd.Printf("  Cache: stale after %s, collected after %s\n",
		cache.FormatDuration(cfg.Cache.StaleTime.Std()), cache.FormatDuration(cfg.Cache.GCTime.Std()))
	if cfg.Cache.Disk.Enabled {
		cmd.Printf("  Disk cache: %s\n", cfg.Cache.Disk.Directory)
	} else {
		cmd.Println("  Disk cache: disabled")
	}
	cmd.Printf("  Page size: %d (fan-out %d)\n", cfg.Query.PageSize, cfg.Query.FanoutLimit)
	cmd.Printf("  CO2 dataset: %s (default year %d)\n", cfg.CO2.Dataset, cfg.CO2.DefaultYear)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
