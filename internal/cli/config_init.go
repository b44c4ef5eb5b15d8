package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// It writes the defaults to ~/.dexter/config.yaml (or $DEXTER_HOME) together
// with a .gitignore that keeps cache and log files out of version control.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to $DEXTER_HOME/config.yaml, or ~/.dexter/config.yaml when
DEXTER_HOME is unset. A .gitignore is added next to it so a dexter home kept
under version control does not pick up cache or log files.`,
		Example: `  # Create the configuration
  dexter config init

  # Create configuration, overwriting existing
  dexter config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// initConfig writes the default configuration and the home .gitignore.
func initConfig(cmd *cobra.Command, force bool) error {
	cfg := config.Default()
	configPath := cfg.FilePath()

	// Check if config already exists and force isn't set
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", configPath, err)
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Create .gitignore (never overwrites existing)
	created, err := config.EnsureGitignore(config.HomeDir())
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to keep cache and logs out of version control\n")
	}

	return nil
}
