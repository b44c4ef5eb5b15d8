package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/config"
)

// configKeysHelp lists the dotted keys for command help text.
func configKeysHelp() string {
	s := ""
	for _, k := range config.Default().Keys() {
		s += "  " + k + "\n"
	}
	return s
}

// NewConfigGetCmd prints one configuration value.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Long: `Prints the effective value of a dotted configuration key, after the
config file and environment overrides are applied.

Keys:
` + configKeysHelp(),
		Example: `  dexter config get cache.stale_time`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigSetCmd updates one value in the config file.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Sets a dotted configuration key and saves the config file. Environment
overrides are not written to the file.

Keys:
` + configKeysHelp(),
		Example: `  dexter config set query.page_size 50
  dexter config set cache.stale_time 10m
  dexter config set co2.dataset ./owid-co2-data.json.gz`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadFile(config.Path())
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save: %w", err)
			}
			if err = cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewConfigListCmd prints every configuration value.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
			for _, k := range cfg.Keys() {
				v, _ := cfg.Get(k)
				fmt.Fprintf(w, "%s\t%s\n", k, v)
			}
			return w.Flush()
		},
	}
}
