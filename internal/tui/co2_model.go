package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/dexter/internal/co2"
	"github.com/rshade/dexter/internal/logging"
)

// Column widths for the emissions table.
const (
	co2NameWidth   = 24
	co2ISOWidth    = 5
	co2RegionWidth = 10
	co2MetricWidth = 16
)

// co2ChangedMark follows a cell that changed with the last year switch.
const co2ChangedMark = " *"

// datasetLoadedMsg carries the result of loading the dataset.
type datasetLoadedMsg struct {
	ds  *co2.Dataset
	err error
}

// highlightExpiredMsg asks the view to redraw once highlights have cleared.
type highlightExpiredMsg struct{}

// CO2Options configures a CO2Model.
type CO2Options struct {
	// Load fetches the dataset; it runs once from Init.
	Load   func(ctx context.Context) (*co2.Dataset, error)
	Year   int
	Delay  time.Duration
	Sort   co2.SortState
	Region string
	Search string
}

// CO2Model is the interactive emissions table.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type CO2Model struct {
	ctx  context.Context
	opts CO2Options

	state    ViewState
	tbl      *co2.Table
	years    []int
	regions  []string
	rows     []co2.Row
	view     table.Model
	focusCol int

	search     textinput.Model
	showSearch bool

	equivalency *co2.Equivalency
	eqCountry   string
	status      string

	loadingState *LoadingState
	width        int
	height       int
	err          error
}

// NewCO2Model creates the table browser; the dataset is loaded by Init.
func NewCO2Model(ctx context.Context, opts CO2Options) CO2Model {
	if opts.Year == 0 {
		opts.Year = co2.DefaultYear
	}
	if opts.Delay <= 0 {
		opts.Delay = co2.DefaultHighlightDelay
	}
	if opts.Region == "" {
		opts.Region = co2.RegionAll
	}
	ls := NewLoadingState()
	ls.SetMessage("Loading CO2 dataset...")
	m := CO2Model{
		ctx:          ctx,
		opts:         opts,
		state:        ViewStateLoading,
		search:       newTextInput(),
		loadingState: ls,
		width:        defaultWidth,
		height:       defaultHeight,
	}
	m.search.SetValue(opts.Search)
	return m
}

// Table returns the table state, or nil before the dataset has loaded.
func (m CO2Model) Table() *co2.Table {
	return m.tbl
}

// Close stops the table's highlight timer.
func (m CO2Model) Close() {
	if m.tbl != nil {
		m.tbl.Close()
	}
}

// Init starts loading the dataset (Bubble Tea interface).
func (m CO2Model) Init() tea.Cmd {
	load, ctx := m.opts.Load, m.ctx
	return tea.Batch(m.loadingState.Init(), func() tea.Msg {
		if load == nil {
			return datasetLoadedMsg{err: errors.New("no dataset source configured")}
		}
		ds, err := load(ctx)
		return datasetLoadedMsg{ds: ds, err: err}
	})
}

// Update handles messages (Bubble Tea interface).
func (m CO2Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuild()
		return m, nil
	case datasetLoadedMsg:
		return m.handleLoaded(msg)
	case highlightExpiredMsg:
		m.rebuild()
		return m, nil
	case tea.KeyMsg:
		if m.showSearch {
			return m.handleSearchInput(msg)
		}
		return m.handleKey(msg)
	}
	if m.state == ViewStateLoading {
		return m, m.loadingState.Update(msg)
	}
	return m, nil
}

func (m CO2Model) handleLoaded(msg datasetLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = ViewStateError
		m.err = msg.err
		logging.FromContext(m.ctx).Error().
			Str("component", "tui").
			Str("operation", "load_co2").
			Err(msg.err).
			Msg("dataset load failed")
		return m, nil
	}

	m.years = msg.ds.AvailableYears()
	m.regions = msg.ds.AvailableRegions()
	year := m.opts.Year
	if len(m.years) > 0 && !slices.Contains(m.years, year) {
		year = m.years[0]
	}
	m.tbl = co2.NewTable(msg.ds, year, m.opts.Delay)
	m.tbl.SetSearch(m.opts.Search)
	m.tbl.SetRegion(m.opts.Region)
	m.tbl.SetSort(m.opts.Sort)
	m.state = ViewStateList
	m.rebuild()
	return m, nil
}

func (m CO2Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter, keyEsc:
		m.showSearch = false
		m.search.Blur()
		m.tbl.SetSearch(m.search.Value())
		m.rebuild()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.tbl.SetSearch(m.search.Value())
	m.rebuild()
	return m, cmd
}

func (m CO2Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyQuit || key == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case ViewStateDetail:
		if key == keyEsc || key == keyEnter {
			m.state = ViewStateList
			m.equivalency = nil
		}
		return m, nil
	case ViewStateList:
	default:
		return m, nil
	}

	switch key {
	case keyLBrack:
		return m.stepYear(1)
	case keyRBrack:
		return m.stepYear(-1)
	case keyLeft:
		m.focusCol = max(m.focusCol-1, 0)
		return m, nil
	case keyRight:
		m.focusCol = min(m.focusCol+1, len(m.sortColumns())-1)
		return m, nil
	case keyS:
		col := m.sortColumns()[m.focusCol]
		state := m.tbl.ToggleSort(col)
		m.status = "Sort: " + sortLabel(state)
		m.rebuild()
		return m, nil
	case "g":
		m.cycleRegion()
		return m, nil
	case keySlash:
		m.showSearch = true
		m.search.Focus()
		return m, textinput.Blink
	case keyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.tbl.SetSearch("")
			m.rebuild()
		}
		return m, nil
	case keyEnter:
		m.openEquivalency()
		return m, nil
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(co2.OptionalColumns) {
		col := co2.OptionalColumns[n-1]
		if toggleErr := m.tbl.ToggleColumn(col); toggleErr == nil {
			m.focusCol = min(m.focusCol, len(m.sortColumns())-1)
			m.rebuild()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// stepYear moves delta positions through the descending year list, so +1 is
// the previous year.
func (m CO2Model) stepYear(delta int) (tea.Model, tea.Cmd) {
	idx := slices.Index(m.years, m.tbl.Query().Year)
	next := idx + delta
	if idx < 0 || next < 0 || next >= len(m.years) {
		return m, nil
	}
	m.tbl.SetYear(m.years[next])
	m.rebuild()
	return m, tea.Tick(m.opts.Delay+10*time.Millisecond, func(time.Time) tea.Msg {
		return highlightExpiredMsg{}
	})
}

func (m *CO2Model) cycleRegion() {
	if len(m.regions) == 0 {
		return
	}
	idx := slices.Index(m.regions, m.tbl.Query().Region)
	m.tbl.SetRegion(m.regions[(idx+1)%len(m.regions)])
	m.rebuild()
}

func (m *CO2Model) openEquivalency() {
	if len(m.rows) == 0 {
		return
	}
	cursor := m.view.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return
	}
	row := m.rows[cursor]
	eq, err := co2.CountryEquivalent(m.tbl.Dataset(), row.Name, m.tbl.Query().Year)
	if err != nil {
		m.status = fmt.Sprintf("%s: %v", row.Name, err)
		return
	}
	m.equivalency = &eq
	m.eqCountry = row.Name
	m.state = ViewStateDetail
}

func (m CO2Model) sortColumns() []co2.Column {
	cols := []co2.Column{co2.ColName, co2.ColISOCode, co2.ColRegion}
	if m.tbl == nil {
		return cols
	}
	return append(cols, m.tbl.Columns()...)
}

func sortLabel(s co2.SortState) string {
	if !s.Active() {
		return "none"
	}
	return s.String()
}

// rebuild recomputes rows and the table widget from the current state.
func (m *CO2Model) rebuild() {
	if m.tbl == nil {
		return
	}
	q := m.tbl.Query()
	m.rows = m.tbl.Rows()
	hl := m.tbl.Highlighter().Current()
	metrics := m.tbl.Columns()

	sortCols := m.sortColumns()
	columns := make([]table.Column, 0, len(sortCols))
	for i, c := range sortCols {
		title := c.Title()
		width := co2MetricWidth
		switch c {
		case co2.ColName:
			title, width = "Country", co2NameWidth
		case co2.ColISOCode:
			title, width = "ISO", co2ISOWidth+2
		case co2.ColRegion:
			title, width = "Region", co2RegionWidth
		}
		title += q.Sort.Indicator(c)
		if i == m.focusCol {
			title = "›" + title
		}
		columns = append(columns, table.Column{Title: title, Width: width})
	}

	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		cells := table.Row{r.Name, orDash(r.ISOCode), orDash(r.Region)}
		for _, c := range metrics {
			cell := co2.FormatCell(c, r.Value(c))
			if hl.Has(r.Name, c) {
				cell += co2ChangedMark
			}
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}

	cursor := m.view.Cursor()
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(bodyHeight(m.height)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	if cursor >= 0 && cursor < len(rows) {
		t.SetCursor(cursor)
	}
	m.view = t
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// View renders the table (Bubble Tea interface).
func (m CO2Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	case ViewStateLoading:
		return RenderLoading(m.loadingState)
	case ViewStateDetail:
		return m.renderEquivalency()
	default:
		return m.renderTable()
	}
}

func (m CO2Model) renderTable() string {
	q := m.tbl.Query()
	header := HeaderStyle.Render(fmt.Sprintf("CO2 EMISSIONS %d", q.Year)) +
		SubtleStyle.Render(fmt.Sprintf("  region: %s", q.Region))
	if q.Search != "" {
		header += SubtleStyle.Render(fmt.Sprintf("  search: %q", q.Search))
	}
	if len(m.tbl.Highlighter().Current()) > 0 {
		header += ChangedStyle.Render("  * changed since last year shown")
	}

	sections := []string{header, m.view.View(), SubtleStyle.Render(fmt.Sprintf("Showing %d countries", len(m.rows)))}
	if m.showSearch {
		sections = append(sections, LabelStyle.Render("Search: ")+m.search.View())
	}
	if m.status != "" {
		sections = append(sections, InfoStyle.Render(m.status))
	}
	sections = append(sections, m.renderColumnToggles(),
		SubtleStyle.Render("[/] year, ←/→ column, s sort, g region, / search, enter equivalents, q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m CO2Model) renderColumnToggles() string {
	shown := m.tbl.Columns()
	parts := make([]string, 0, len(co2.OptionalColumns))
	for i, c := range co2.OptionalColumns {
		box := "[ ]"
		if slices.Contains(shown, c) {
			box = "[x]"
		}
		parts = append(parts, fmt.Sprintf("%d%s %s", i+1, box, strings.ToLower(c.Title())))
	}
	return SubtleStyle.Render(strings.Join(parts, "  "))
}

func (m CO2Model) renderEquivalency() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s, %d", m.eqCountry, m.tbl.Query().Year)))
	b.WriteString("\n\n")
	eq := m.equivalency
	switch {
	case eq == nil || eq.IsEmpty:
		b.WriteString("No CO2 emissions to compare.")
	default:
		b.WriteString(eq.DisplayText)
		for _, r := range eq.Results {
			b.WriteString("\n")
			b.WriteString(LabelStyle.Render(r.FormattedValue))
			b.WriteString(" ")
			b.WriteString(r.Label)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(SubtleStyle.Render("esc to go back"))
	return BoxStyle.Width(m.width - borderPadding).Render(b.String())
}
