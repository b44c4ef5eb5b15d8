package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/dexter/internal/cli/pagination"
	"github.com/rshade/dexter/internal/co2"
	"github.com/rshade/dexter/internal/engine"
	"github.com/rshade/dexter/internal/tui"
)

// newCO2Cmd creates the co2 command group.
func newCO2Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "co2",
		Short: "Explore per-country CO2 emissions",
		Long: `Explore the Our World in Data CO2 dataset: filter by name and region,
sort by any column and compare years.

The dataset source is co2.dataset in the config file or DEXTER_CO2_DATASET;
it may be a URL or a local file, optionally gzip or zstd compressed.`,
	}
	cmd.PersistentFlags().String("dataset", "", "dataset URL or file (overrides config)")
	cmd.AddCommand(NewCO2TableCmd(), NewCO2ShowCmd(), NewCO2BrowseCmd())
	return cmd
}

// datasetSource is --dataset or the configured source.
func datasetSource(cmd *cobra.Command, a *app) string {
	if src, _ := cmd.Flags().GetString("dataset"); src != "" {
		return src
	}
	return a.cfg.CO2.Dataset
}

//nolint:gochecknoglobals // Fixed option list.
var knownRegions = []string{
	co2.RegionAll, co2.RegionEurope, co2.RegionAsia, co2.RegionAfrica, co2.RegionAmericas, co2.RegionOceania,
}

// co2TableFlags holds the co2 table options.
type co2TableFlags struct {
	year        int
	compareYear int
	search      string
	region      string
	sort        string
	columns     []string
	page        pagination.PaginationParams
}

// co2TableOutput is the JSON document of co2 table.
type co2TableOutput struct {
	Year        int                        `json:"year"`
	CompareYear int                        `json:"compare_year,omitempty"`
	Region      string                     `json:"region"`
	Search      string                     `json:"search,omitempty"`
	Sort        string                     `json:"sort,omitempty"`
	Columns     []co2.Column               `json:"columns"`
	Rows        []engine.CO2Row            `json:"rows"`
	Pagination  *pagination.PaginationMeta `json:"pagination,omitempty"`
}

// parseCO2Sort reads "column[:asc|desc]" with the shared sort flag syntax.
func parseCO2Sort(raw string) (co2.SortState, error) {
	field, order, err := pagination.ParseSort(raw)
	if err != nil {
		return co2.SortState{}, err
	}
	if field == "" {
		return co2.SortState{}, nil
	}
	col, err := co2.ParseColumn(field)
	if err != nil {
		return co2.SortState{}, err
	}
	dir := co2.DirectionAsc
	if order == pagination.SortOrderDesc {
		dir = co2.DirectionDesc
	}
	return co2.SortState{Column: col, Direction: dir}, nil
}

// parseColumns validates the --columns list of optional columns.
func parseColumns(raw []string) ([]co2.Column, error) {
	var cols []co2.Column
	for _, r := range raw {
		for _, name := range strings.Split(r, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			col, err := co2.ParseColumn(name)
			if err != nil {
				return nil, err
			}
			if !col.IsOptional() {
				return nil, fmt.Errorf("%w: %q is always shown; optional columns are %s",
					co2.ErrUnknownColumn, name, joinColumns(co2.OptionalColumns))
			}
			cols = append(cols, col)
		}
	}
	return cols, nil
}

func joinColumns(cols []co2.Column) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ", ")
}

// NewCO2TableCmd prints the derived emissions table.
func NewCO2TableCmd() *cobra.Command {
	var f co2TableFlags
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the emissions table for a year",
		Example: `  dexter co2 table
  dexter co2 table --year 2020 --region Europe --sort co2:desc
  dexter co2 table --search united --columns methane,coal_co2
  dexter co2 table --year 2021 --compare-year 2020`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCO2Table(cmd, f)
		},
	}
	cmd.Flags().IntVar(&f.year, "year", 0, "year to show (default from config)")
	cmd.Flags().IntVar(&f.compareYear, "compare-year", 0, "mark cells that changed since this year")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive country name filter")
	cmd.Flags().StringVar(&f.region, "region", co2.RegionAll, "region: All, Europe, Asia, Africa, Americas or Oceania")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort column with optional direction, e.g. co2:desc")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "optional columns to add, e.g. methane,oil_co2")
	cmd.Flags().IntVar(&f.page.Page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&f.page.PageSize, "page-size", 0, "rows per page (default from config)")
	return cmd
}

func runCO2Table(cmd *cobra.Command, f co2TableFlags) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	sortState, err := parseCO2Sort(f.sort)
	if err != nil {
		return err
	}
	cols, err := parseColumns(f.columns)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.co2.Load(cmd.Context(), datasetSource(cmd, a))
	if err != nil {
		return err
	}

	year := f.year
	if year == 0 {
		year = a.cfg.CO2.DefaultYear
	}
	if !slices.Contains(ds.AvailableYears(), year) {
		return fmt.Errorf("%w: no records for year %d", co2.ErrNoData, year)
	}
	if !slices.Contains(knownRegions, f.region) {
		return fmt.Errorf("unknown region %q: choose from %s", f.region, strings.Join(knownRegions, ", "))
	}

	rows := co2.Derive(ds, co2.Query{Year: year, Search: f.search, Region: f.region, Sort: sortState})
	displayed := co2.TrackedColumns(cols)

	var hl co2.Highlights
	if f.compareYear != 0 {
		hl = co2.Diff(ds, f.compareYear, year, cols)
	}

	var meta *pagination.PaginationMeta
	if f.page.Page > 0 {
		page, pageSize, pageErr := f.page.ResolvePage(a.cfg.Query.PageSize)
		if pageErr != nil {
			return pageErr
		}
		m := pagination.NewPaginationMeta(page, pageSize, len(rows))
		meta = &m
		rows = pagination.ApplyToSlice(f.page, rows, a.cfg.Query.PageSize)
	}

	out := engine.NewCO2Rows(rows, displayed, year, hl)
	doc := co2TableOutput{
		Year:        year,
		CompareYear: f.compareYear,
		Region:      f.region,
		Search:      f.search,
		Sort:        sortState.String(),
		Columns:     displayed,
		Rows:        out,
		Pagination:  meta,
	}
	return render(cmd.OutOrStdout(), format, out, doc, func() error {
		if err := engine.RenderCO2Table(cmd.OutOrStdout(), rows, displayed, sortState, hl); err != nil {
			return err
		}
		if meta != nil {
			cmd.Printf("Page %d of %d\n", meta.CurrentPage, meta.TotalPages)
		}
		return nil
	})
}

// co2ShowOutput is the JSON document of co2 show.
type co2ShowOutput struct {
	Country     string             `json:"country"`
	ISOCode     string             `json:"iso_code,omitempty"`
	Region      string             `json:"region,omitempty"`
	Year        int                `json:"year"`
	Equivalency *co2.Equivalency   `json:"equivalency,omitempty"`
	History     []co2.YearlyRecord `json:"history"`
}

// NewCO2ShowCmd prints one country's history and everyday equivalents.
func NewCO2ShowCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "show <country>",
		Short: "Show a country's emissions history",
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

			ds, err := a.co2.Load(cmd.Context(), datasetSource(cmd, a))
			if err != nil {
				return err
			}
			country, ok := ds.Country(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", co2.ErrUnknownCountry, args[0])
			}
			if year == 0 {
				year = a.cfg.CO2.DefaultYear
			}

			eq, eqErr := co2.CountryEquivalent(ds, country.Name, year)
			if eqErr != nil && !errors.Is(eqErr, co2.ErrNoData) {
				return eqErr
			}
			region, _ := co2.ClassifyRegion(country.Name)

			doc := co2ShowOutput{
				Country: country.Name,
				ISOCode: country.ISOCode,
				Region:  region,
				Year:    year,
				History: country.Records,
			}
			if eqErr == nil {
				doc.Equivalency = &eq
			}

			return render(cmd.OutOrStdout(), format, country.Records, doc, func() error {
				w := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(w, "%s (%s)\n\n", country.Name, orDash(country.ISOCode)); err != nil {
					return err
				}
				if err := engine.RenderCO2History(w, country, co2.BaseColumns); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "\n%d:\n", year); err != nil {
					return err
				}
				if eqErr != nil {
					_, err := fmt.Fprintln(w, "No CO2 data for this year.")
					return err
				}
				return engine.RenderEquivalency(w, eq)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year for the equivalency summary (default from config)")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewCO2BrowseCmd starts the interactive emissions table.
func NewCO2BrowseCmd() *cobra.Command {
	var (
		year   int
		sort   string
		region string
		search string
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the emissions table interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sortState, err := co2.ParseSortState(sort)
			if err != nil {
				return err
			}
			if tui.DetectOutputMode(false, false, false) != tui.OutputModeInteractive {
				return errors.New("co2 browse needs an interactive terminal; use co2 table instead")
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if year == 0 {
				year = a.cfg.CO2.DefaultYear
			}
			source := datasetSource(cmd, a)
			model := tui.NewCO2Model(cmd.Context(), tui.CO2Options{
				Load: func(ctx context.Context) (*co2.Dataset, error) {
					return a.co2.Load(ctx, source)
				},
				Year:   year,
				Delay:  a.cfg.CO2.HighlightDelay.Std(),
				Sort:   sortState,
				Region: region,
				Search: search,
			})

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if m, ok := final.(tui.CO2Model); ok {
				m.Close()
			}
			if err != nil {
				return fmt.Errorf("running browser: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "starting year (default from config)")
	cmd.Flags().StringVar(&sort, "sort", "", "starting sort, e.g. co2:desc")
	cmd.Flags().StringVar(&region, "region", co2.RegionAll, "starting region")
	cmd.Flags().StringVar(&search, "search", "", "starting name filter")
	return cmd
}
