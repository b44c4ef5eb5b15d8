package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/cli/pagination"
	"github.com/rshade/dexter/internal/config"
	"github.com/rshade/dexter/internal/engine"
	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/nav"
	"github.com/rshade/dexter/internal/pokeapi"
	"github.com/rshade/dexter/internal/prefs"
	"github.com/rshade/dexter/internal/selection"
	"github.com/rshade/dexter/internal/tui"
)

// newPokemonCmd creates the pokemon command group.
func newPokemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pokemon",
		Aliases: []string{"pkmn"},
		Short:   "Browse, select and export Pokémon",
	}
	cmd.AddCommand(
		NewPokemonListCmd(), NewPokemonShowCmd(), NewPokemonSelectCmd(),
		NewPokemonExportCmd(), NewPokemonBrowseCmd(),
	)
	return cmd
}

// pokemonListOutput is the JSON document of a list page.
type pokemonListOutput struct {
	Items      []engine.PokemonRow       `json:"items"`
	Pagination pagination.PaginationMeta `json:"pagination"`
	Search     string                    `json:"search,omitempty"`
}

// NewPokemonListCmd lists one page of Pokémon, or the single search hit.
func NewPokemonListCmd() *cobra.Command {
	params := pagination.NewPaginationParams()
	var (
		search  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of Pokémon with their details",
		Example: `  # First page with the configured page size
  dexter pokemon list

  # Third page of 50
  dexter pokemon list --page 3 --page-size 50

  # Search by exact name or id
  dexter pokemon list --search pikachu`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			page, pageSize, err := params.ResolvePage(a.cfg.Query.PageSize)
			if err != nil {
				return err
			}
			var opts []cache.GetOption
			if refresh {
				opts = append(opts, cache.WithRefresh())
			}

			result, err := a.svc.Browse(cmd.Context(), page, pageSize, search, opts...)
			if err != nil {
				return fmt.Errorf("listing page %d: %w", page, err)
			}

			store, err := selection.Load(selection.DefaultPath())
			if err != nil {
				logger.Warn().Ctx(cmd.Context()).Err(err).Msg("ignoring unreadable selection file")
				store = selection.NewStore()
			}

			rows := engine.NewPokemonRows(result.Items, store.Contains)
			meta := pagination.NewPaginationMeta(page, pageSize, result.TotalCount)
			if search != "" {
				meta = pagination.NewPaginationMeta(1, pageSize, result.TotalCount)
			}
			doc := pokemonListOutput{Items: rows, Pagination: meta, Search: search}

			return render(cmd.OutOrStdout(), format, rows, doc, func() error {
				footer := fmt.Sprintf("Page %d of %d (%d total)", meta.CurrentPage, meta.TotalPages, meta.TotalItems)
				return engine.RenderPokemonTable(cmd.OutOrStdout(), rows, footer)
			})
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "items per page (default from config)")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "items per page, offset style")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "items to skip, a multiple of --limit")
	cmd.Flags().StringVar(&search, "search", "", "show only the Pokémon with this exact name or id")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached data")
	return cmd
}

// NewPokemonShowCmd shows one Pokémon.
func NewPokemonShowCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show a Pokémon's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var opts []cache.GetOption
			if refresh {
				opts = append(opts, cache.WithRefresh())
			}
			d, err := a.svc.ByKey(cmd.Context(), args[0], opts...)
			if err != nil {
				return fmt.Errorf("looking up %q: %w", args[0], err)
			}

			return render(cmd.OutOrStdout(), format, []pokeapi.Detail{d}, d, func() error {
				return engine.RenderPokemonDetail(cmd.OutOrStdout(), d, a.exporter.DetailsURL(d.ID))
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached data")
	return cmd
}

// NewPokemonSelectCmd manages the persisted selection.
func NewPokemonSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Manage the selected Pokémon",
	}
	cmd.AddCommand(
		newSelectAddCmd(), newSelectRemoveCmd(), newSelectClearCmd(), newSelectListCmd(),
	)
	return cmd
}

func newSelectAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id|name>...",
		Short: "Add Pokémon to the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path := selection.DefaultPath()
			store, err := selection.Load(path)
			if err != nil {
				return err
			}
			for _, term := range args {
				d, lookupErr := a.svc.ByKey(cmd.Context(), term)
				if lookupErr != nil {
					return fmt.Errorf("looking up %q: %w", term, lookupErr)
				}
				if store.Add(selection.FromDetail(d)) {
					cmd.Printf("Selected #%d %s\n", d.ID, d.Name)
				} else {
					cmd.Printf("#%d %s is already selected\n", d.ID, d.Name)
				}
			}
			return selection.Save(path, store)
		},
	}
}

func newSelectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|name>...",
		Short: "Remove Pokémon from the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := selection.DefaultPath()
			store, err := selection.Load(path)
			if err != nil {
				return err
			}
			for _, term := range args {
				item, ok := findSelected(store, term)
				if !ok {
					cmd.Printf("%s is not selected\n", term)
					continue
				}
				store.Remove(item.ID)
				cmd.Printf("Removed #%d %s\n", item.ID, item.Name)
			}
			return selection.Save(path, store)
		},
	}
}

// findSelected matches term against the ids and names already selected, so
// removal needs no network.
func findSelected(store *selection.Store, term string) (selection.Item, bool) {
	norm := pokeapi.NormalizeTerm(term)
	id, idErr := strconv.Atoi(norm)
	for _, it := range store.Items() {
		if (idErr == nil && it.ID == id) || it.Name == norm {
			return it, true
		}
	}
	return selection.Item{}, false
}

func newSelectClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := selection.DefaultPath()
			store, err := selection.Load(path)
			if err != nil {
				return err
			}
			n := store.Len()
			if n > 0 && !confirmDestructive(cmd, yes, fmt.Sprintf("Clear %d selected items?", n)) {
				cmd.Println("Selection kept.")
				return nil
			}
			store.Clear()
			if err = selection.Save(path, store); err != nil {
				return err
			}
			cmd.Printf("Cleared %d selected items\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "clear without asking")
	return cmd
}

func newSelectListCmd() *cobra.Command {
	params := pagination.NewPaginationParams()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected Pokémon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			store, err := selection.Load(selection.DefaultPath())
			if err != nil {
				return err
			}
			items := store.Items()
			if params.Page > 0 || params.Limit > 0 {
				items = pagination.ApplyToSlice(*params, items, config.GetGlobalConfig().Query.PageSize)
			}

			rows := make([]engine.PokemonRow, 0, len(items))
			for _, it := range items {
				rows = append(rows, engine.PokemonRow{ID: it.ID, Name: it.Name, Types: it.Types, Selected: true})
			}
			return render(cmd.OutOrStdout(), format, rows, rows, func() error {
				if len(rows) == 0 {
					cmd.Println("Nothing selected.")
					return nil
				}
				return engine.RenderPokemonTable(cmd.OutOrStdout(), rows, fmt.Sprintf("%d selected", store.Len()))
			})
		},
	}
	cmd.Flags().IntVar(&params.Page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "items per page")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "items per page, offset style")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "items to skip")
	return cmd
}

// NewPokemonExportCmd writes the selection as CSV.
func NewPokemonExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected Pokémon as CSV",
		Long: `Writes the selection as CSV with the columns ID, Name, Description and
Details URL. Without --out the CSV goes to {count}_items.csv in the current
directory; use --out - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := selection.Load(selection.DefaultPath())
			if err != nil {
				return err
			}
			if store.Len() == 0 {
				return &ExitError{Code: ExitFailure, Err: errors.New("nothing selected to export")}
			}
			out, err := a.exporter.Export(store.Items())
			if err != nil {
				return err
			}

			if outPath == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
				return err
			}
			if outPath == "" {
				outPath = out.Filename
			}
			if dir := filepath.Dir(outPath); dir != "." {
				if err = os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			if err = os.WriteFile(outPath, []byte(out.Content), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			cmd.Printf("Exported %d items to %s (%s)\n", store.Len(), outPath, out.MimeType)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "destination file, or - for stdout")
	return cmd
}

// NewPokemonBrowseCmd starts the interactive browser.
func NewPokemonBrowseCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse Pokémon interactively",
		Example: `  dexter pokemon browse
  dexter pokemon browse --at "/en/page/3?details=25"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := nav.Home()
			if location != "" {
				loc, err := nav.Parse(location)
				if err != nil {
					return err
				}
				start = loc
			}

			if tui.DetectOutputMode(false, false, false) != tui.OutputModeInteractive {
				return errors.New("pokemon browse needs an interactive terminal; use pokemon list instead")
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			selPath := selection.DefaultPath()
			store, err := selection.Load(selPath)
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			model := tui.NewPokemonModel(cmd.Context(), tui.PokemonOptions{
				Service:       a.svc,
				PageSize:      a.cfg.Query.PageSize,
				Start:         start,
				Selection:     store,
				SelectionPath: selPath,
				Exporter:      a.exporter,
				ExportDir:     cwd,
				Prefs:         prefs.Open(prefs.DefaultPath()),
			})
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("running browser: %w", err)
			}
			if m, ok := final.(tui.PokemonModel); ok {
				cmd.Println(m.Location().String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "at", "", "start location, e.g. /en/page/2?details=25")
	return cmd
}
