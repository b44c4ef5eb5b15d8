package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	ColorSubtle    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
)

// Text styles shared by every view.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle  = lipgloss.NewStyle().Bold(true)
	ValueStyle  = lipgloss.NewStyle()
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle)
	InfoStyle   = lipgloss.NewStyle().Foreground(ColorPrimary)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// ChangedStyle marks a cell whose value changed with the last year switch.
	ChangedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHighlight)

	// ActivePageStyle marks the current page in the pagination bar.
	ActivePageStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	PageStyle       = lipgloss.NewStyle().Padding(0, 1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)
)

// Table styles.
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true)
	TableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)
