package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ViewState is the screen a model is showing.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
	ViewStateError
)

func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateQuitting:
		return "quitting"
	case ViewStateError:
		return "error"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// Key bindings shared by the models.
const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keySlash  = "/"
	keyS      = "s"
	keyR      = "r"
	keyE      = "e"
	keyLeft   = "left"
	keyRight  = "right"
	keySpace  = " "
	keySpaceN = "space"
	keyLBrack = "["
	keyRBrack = "]"
)

// Layout defaults.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
	borderPadding = 2
	// chromeHeight is the rows taken by title, status bar and footer.
	chromeHeight = 6
)

// OutputMode is how a command presents its results.
type OutputMode int

// Output modes.
const (
	// OutputModePlain writes unstyled text, for pipes and dumb terminals.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text without taking over the terminal.
	OutputModeStyled
	// OutputModeInteractive runs a full-screen Bubble Tea program.
	OutputModeInteractive
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // Fd fits in int on supported platforms.
}

// DetectOutputMode chooses an output mode. plain forces OutputModePlain and
// noInteractive caps the result at OutputModeStyled. NO_COLOR, TERM=dumb and
// CI downgrade to plain text.
func DetectOutputMode(forceColor, plain, noInteractive bool) OutputMode {
	if plain {
		return OutputModePlain
	}
	if !forceColor {
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" || os.Getenv("CI") != "" {
			return OutputModePlain
		}
		if !IsTTY() {
			return OutputModePlain
		}
	}
	if noInteractive || !IsTTY() {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// LoadingState is a spinner with a message.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a spinner with the default message.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = InfoStyle
	return &LoadingState{spinner: s, message: "Loading..."}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// SetMessage replaces the message shown next to the spinner.
func (l *LoadingState) SetMessage(msg string) {
	l.message = msg
}

// Update advances the spinner on its tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// RenderLoading returns the loading line, or "Loading..." when loading is nil.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s %s\n\n", loading.spinner.View(), loading.message)
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// bodyHeight is the rows left for list content at the given terminal height.
func bodyHeight(height int) int {
	h := height - chromeHeight
	if h < minHeight {
		return minHeight
	}
	return h
}
