package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/dexter/internal/cli/pagination"
	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/engine/query"
	"github.com/rshade/dexter/internal/logging"
	"github.com/rshade/dexter/internal/nav"
	"github.com/rshade/dexter/internal/pokeapi"
	"github.com/rshade/dexter/internal/prefs"
	"github.com/rshade/dexter/internal/selection"
	listview "github.com/rshade/dexter/internal/tui/list"
	"github.com/rshade/dexter/internal/tui/detail"
)

// detailPanelWidth is the width of the side panel when it fits.
const detailPanelWidth = 48

// listLoadedMsg is sent when the list observer has settled on a result.
type listLoadedMsg struct{}

// detailLoadedMsg is sent when the detail observer has settled on a result.
type detailLoadedMsg struct{}

// exportedMsg reports the outcome of a CSV export.
type exportedMsg struct {
	path  string
	count int
	err   error
}

// PokemonOptions wires a PokemonModel to its collaborators.
type PokemonOptions struct {
	Service  *query.Service
	PageSize int
	Start    nav.Location

	Selection     *selection.Store
	SelectionPath string
	Exporter      *selection.Exporter
	ExportDir     string

	Prefs *prefs.Session
}

// PokemonModel is the interactive Pokémon browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type PokemonModel struct {
	ctx  context.Context
	opts PokemonOptions

	state   ViewState
	pager   *pagination.Controller
	list    *listview.Model[pokeapi.Detail]
	listObs *query.Observer[query.ListResult]
	detObs  *query.Observer[pokeapi.Detail]

	search     textinput.Model
	showSearch bool
	term       string

	status       string
	loadingState *LoadingState
	width        int
	height       int
	err          error
}

// NewPokemonModel creates the browser at opts.Start, restoring the persisted
// search term.
func NewPokemonModel(ctx context.Context, opts PokemonOptions) PokemonModel {
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.Selection == nil {
		opts.Selection = selection.NewStore()
	}
	if opts.Exporter == nil {
		opts.Exporter = selection.NewExporter("")
	}
	start := opts.Start
	if start.Locale == "" {
		start = nav.Home().WithPage(max(start.Page, 1)).WithDetails(start.Details)
	}

	m := PokemonModel{
		ctx:          ctx,
		opts:         opts,
		state:        ViewStateLoading,
		pager:        pagination.NewController(start, start.Page),
		listObs:      query.NewObserver[query.ListResult](opts.Service.Cache()),
		detObs:       query.NewObserver[pokeapi.Detail](opts.Service.Cache()),
		search:       newTextInput(),
		loadingState: NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
	if opts.Prefs != nil {
		m.term = opts.Prefs.SearchTerm()
		m.search.SetValue(m.term)
	}
	m.list = listview.New(bodyHeight(m.height), m.renderRow)
	m.list.SetEmptyText(pokeapi.ErrNotFound.Error())
	return m
}

// Location returns the browser's current location.
func (m PokemonModel) Location() nav.Location {
	return m.pager.Location()
}

// Close releases the observers' cache subscriptions.
func (m PokemonModel) Close() {
	m.listObs.Close()
	m.detObs.Close()
}

// Init loads the starting page and any detail panel named by the location.
func (m PokemonModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadingState.Init(), m.loadList(false)}
	if id := m.pager.Location().Details; id != "" {
		cmds = append(cmds, m.loadDetail(id, false))
	}
	return tea.Batch(cmds...)
}

func waitFor(done <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-done
		return msg
	}
}

func (m PokemonModel) loadList(refresh bool) tea.Cmd {
	page := m.pager.State().CurrentPage
	size, term, svc := m.opts.PageSize, m.term, m.opts.Service
	var getOpts []cache.GetOption
	if refresh {
		getOpts = append(getOpts, cache.WithRefresh())
	}
	done := m.listObs.Load(m.ctx, query.BrowseKey(page, size, term), func(ctx context.Context) (query.ListResult, error) {
		return svc.Browse(ctx, page, size, term, getOpts...)
	})
	return waitFor(done, listLoadedMsg{})
}

func (m PokemonModel) loadDetail(term string, refresh bool) tea.Cmd {
	svc := m.opts.Service
	var getOpts []cache.GetOption
	if refresh {
		getOpts = append(getOpts, cache.WithRefresh())
	}
	done := m.detObs.Load(m.ctx, query.DetailKey(term), func(ctx context.Context) (pokeapi.Detail, error) {
		return svc.ByKey(ctx, term, getOpts...)
	})
	return waitFor(done, detailLoadedMsg{})
}

// Update handles messages (Bubble Tea interface).
func (m PokemonModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetHeight(bodyHeight(m.height))
		return m, nil
	case listLoadedMsg:
		return m.handleListLoaded()
	case detailLoadedMsg:
		return m, nil
	case exportedMsg:
		m.status = exportStatus(msg)
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

func (m PokemonModel) handleListLoaded() (tea.Model, tea.Cmd) {
	res := m.listObs.Current()
	switch res.State {
	case query.StateReady:
		m.list.SetItems(res.Data.Items)
		requested := m.pager.State().CurrentPage
		m.pager.SetTotalPages(pagination.TotalPages(res.Data.TotalCount, m.opts.PageSize))
		m.err = nil
		if m.pager.State().CurrentPage != requested {
			// The requested page was past the end; load the last real one.
			m.state = ViewStateLoading
			return m, m.loadList(false)
		}
		m.state = ViewStateList
	case query.StateError:
		if pokeapi.IsNotFound(res.Err) {
			m.list.SetItems(nil)
			m.pager.SetTotalPages(1)
			m.state = ViewStateList
			m.err = nil
			return m, nil
		}
		m.state = ViewStateError
		m.err = res.Err
		logging.FromContext(m.ctx).Warn().
			Str("component", "tui").
			Str("operation", "load_list").
			Err(res.Err).
			Msg("list load failed")
	case query.StateIdle, query.StateLoading:
		// A newer load is in flight and will report on its own.
	}
	return m, nil
}

func (m PokemonModel) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.showSearch = false
		m.search.Blur()
		return m.applySearch(m.search.Value())
	case keyEsc:
		m.showSearch = false
		m.search.Blur()
		m.search.SetValue(m.term)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m PokemonModel) applySearch(term string) (tea.Model, tea.Cmd) {
	term = strings.TrimSpace(term)
	if term == m.term {
		return m, nil
	}
	m.term = term
	m.search.SetValue(term)
	if m.opts.Prefs != nil {
		if err := m.opts.Prefs.SetSearchTerm(term); err != nil {
			m.status = "Could not save search: " + err.Error()
		}
	}
	m.closeDetail()
	if !m.pager.GoTo(1) {
		m.pager.SetTotalPages(1)
	}
	m.state = ViewStateLoading
	return m, tea.Batch(m.loadingState.Init(), m.loadList(false))
}

func (m PokemonModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyR:
		if m.detailOpen() && m.detailPanel().CanRetry() {
			return m, m.loadDetail(m.pager.Location().Details, true)
		}
		m.state = ViewStateLoading
		return m, tea.Batch(m.loadingState.Init(), m.loadList(true))
	}

	if m.state != ViewStateList {
		return m, nil
	}

	switch msg.String() {
	case keyLeft:
		return m.changePage(m.pager.Prev())
	case keyRight:
		return m.changePage(m.pager.Next())
	case keyEnter:
		d, ok := m.list.Focused()
		if !ok {
			return m, nil
		}
		id := strconv.Itoa(d.ID)
		m.pager.SelectDetails(id)
		return m, m.loadDetail(id, false)
	case keySpace, keySpaceN:
		return m.toggleSelected()
	case keyE:
		return m, m.export()
	case "x":
		m.opts.Selection.Clear()
		m.status = m.saveSelection("Selection cleared")
		return m, nil
	case keySlash:
		m.showSearch = true
		m.search.Focus()
		return m, textinput.Blink
	case keyEsc:
		if m.detailOpen() {
			m.closeDetail()
			return m, nil
		}
		if m.term != "" {
			return m.applySearch("")
		}
		return m, nil
	}
	return m, m.list.Update(msg)
}

func (m PokemonModel) changePage(moved bool) (tea.Model, tea.Cmd) {
	if !moved {
		return m, nil
	}
	m.detObs.Reset()
	m.state = ViewStateLoading
	return m, tea.Batch(m.loadingState.Init(), m.loadList(false))
}

func (m PokemonModel) toggleSelected() (tea.Model, tea.Cmd) {
	d, ok := m.list.Focused()
	if !ok {
		return m, nil
	}
	verb := "Deselected"
	if m.opts.Selection.Toggle(selection.FromDetail(d)) {
		verb = "Selected"
	}
	m.status = m.saveSelection(fmt.Sprintf("%s %s", verb, d.Name))
	return m, nil
}

func (m PokemonModel) saveSelection(ok string) string {
	if m.opts.SelectionPath == "" {
		return ok
	}
	if err := selection.Save(m.opts.SelectionPath, m.opts.Selection); err != nil {
		return "Could not save selection: " + err.Error()
	}
	return ok
}

func (m PokemonModel) export() tea.Cmd {
	items := m.opts.Selection.Items()
	exporter, dir := m.opts.Exporter, m.opts.ExportDir
	return func() tea.Msg {
		if len(items) == 0 {
			return exportedMsg{}
		}
		out, err := exporter.Export(items)
		if err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, out.Filename)
		if err = os.WriteFile(path, []byte(out.Content), 0o600); err != nil {
			return exportedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportedMsg{path: path, count: len(items)}
	}
}

func exportStatus(msg exportedMsg) string {
	switch {
	case msg.err != nil:
		return "Export failed: " + msg.err.Error()
	case msg.count == 0:
		return "Nothing selected to export"
	default:
		return fmt.Sprintf("Exported %d items to %s", msg.count, msg.path)
	}
}

func (m PokemonModel) detailOpen() bool {
	return m.pager.Location().Details != ""
}

func (m *PokemonModel) closeDetail() {
	m.pager.SelectDetails("")
	m.detObs.Reset()
}

func (m PokemonModel) detailPanel() detail.Panel {
	res := m.detObs.Current()
	p := detail.Panel{Result: res, Width: detailPanelWidth}
	if res.State == query.StateReady {
		p.Selected = m.opts.Selection.Contains(res.Data.ID)
		p.DetailsURL = m.opts.Exporter.DetailsURL(res.Data.ID)
	}
	return p
}

func (m PokemonModel) renderRow(d pokeapi.Detail, focused bool) string {
	mark := "  "
	if m.opts.Selection.Contains(d.ID) {
		mark = "★ "
	}
	line := fmt.Sprintf("%s#%-5d %-20s %s", mark, d.ID, d.Name, strings.Join(d.TypeNames(), ", "))
	if focused {
		return TableSelectedStyle.Render(line)
	}
	return ValueStyle.Render(line)
}

// View renders the browser (Bubble Tea interface).
func (m PokemonModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
			SubtleStyle.Render("Press 'r' to retry, 'q' to quit.")
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), RenderLoading(m.loadingState))
	default:
		return m.renderListView()
	}
}

func (m PokemonModel) renderTitle() string {
	title := HeaderStyle.Render("POKÉMON")
	if m.term != "" {
		title += SubtleStyle.Render(fmt.Sprintf("  search: %q", m.term))
	}
	return title + SubtleStyle.Render("  "+m.pager.Location().String())
}

func (m PokemonModel) renderListView() string {
	body := m.list.View()
	if m.detailOpen() {
		if m.width >= detailPanelWidth*2 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", m.detailPanel().View())
		} else {
			body = m.detailPanel().View()
		}
	}

	sections := []string{m.renderTitle(), "", body, "", RenderPageWindow(m.pager.Window(), m.pager.State().CurrentPage)}
	if m.showSearch {
		sections = append(sections, LabelStyle.Render("Search: ")+m.search.View())
	}
	if m.status != "" {
		sections = append(sections, InfoStyle.Render(m.status))
	}
	sections = append(sections, SubtleStyle.Render(fmt.Sprintf(
		"%d selected | ←/→ page, enter details, space select, e export, / search, r refresh, q quit",
		m.opts.Selection.Len())))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderPageWindow renders page buttons, highlighting current.
func RenderPageWindow(items []pagination.PageItem, current int) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if !it.Ellipsis && it.Page == current {
			parts = append(parts, ActivePageStyle.Render(it.String()))
			continue
		}
		parts = append(parts, PageStyle.Render(it.String()))
	}
	return strings.Join(parts, "")
}
