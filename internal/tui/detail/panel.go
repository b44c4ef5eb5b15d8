package detail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/dexter/internal/engine/query"
	"github.com/rshade/dexter/internal/pokeapi"
)

// RetryKey is the key that reloads a failed panel.
const RetryKey = "r"

// statBarWidth is the width of a stat bar at the maximum base stat.
const statBarWidth = 20

// maxBaseStat scales the stat bars.
const maxBaseStat = 255

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"})
	labelStyle = lipgloss.NewStyle().Bold(true).Width(12)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"})
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Panel describes what the detail pane shows.
type Panel struct {
	Result     query.Result[pokeapi.Detail]
	Selected   bool
	DetailsURL string
	Width      int
}

// CanRetry reports whether the retry key applies.
func (p Panel) CanRetry() bool {
	return p.Result.State == query.StateError
}

// View renders the panel.
func (p Panel) View() string {
	var body string
	switch p.Result.State {
	case query.StateIdle:
		body = hintStyle.Render("Select a Pokémon and press enter.")
	case query.StateLoading:
		body = "Loading details..."
	case query.StateError:
		body = renderError(p.Result.Err)
	case query.StateReady:
		body = p.renderDetail(p.Result.Data)
	}

	box := boxStyle
	if p.Width > 0 {
		box = box.Width(p.Width)
	}
	return box.Render(body)
}

func renderError(err error) string {
	msg := "Failed to load details"
	if err != nil {
		msg = err.Error()
	}
	if pokeapi.IsNotFound(err) {
		return errStyle.Render(msg)
	}
	return errStyle.Render(msg) + "\n" + hintStyle.Render(fmt.Sprintf("Press '%s' to retry, esc to close.", RetryKey))
}

func (p Panel) renderDetail(d pokeapi.Detail) string {
	var b strings.Builder

	title := fmt.Sprintf("#%d %s", d.ID, d.Name)
	if p.Selected {
		title += " ★"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Types", joinOr(d.TypeNames()))
	field("Abilities", joinOr(d.AbilityNames()))
	field("Height", strconv.FormatFloat(float64(d.Height)/10, 'f', 1, 64)+" m")
	field("Weight", strconv.FormatFloat(float64(d.Weight)/10, 'f', 1, 64)+" kg")
	if d.Sprites.FrontDefault != "" {
		field("Sprite", d.Sprites.FrontDefault)
	}
	if p.DetailsURL != "" {
		field("Details", p.DetailsURL)
	}

	if len(d.Stats) > 0 {
		b.WriteString("\n")
		for _, s := range d.Stats {
			field(s.Stat.Name, fmt.Sprintf("%3d %s", s.BaseStat, StatBar(s.BaseStat)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatBar draws value as a bar scaled to the maximum base stat.
func StatBar(value int) string {
	n := value * statBarWidth / maxBaseStat
	n = max(0, min(n, statBarWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", statBarWidth-n)
}

func joinOr(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
