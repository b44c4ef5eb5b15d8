package pagination

import (
	"sync"

	"github.com/rshade/dexter/internal/nav"
)

// State is the current page and the page count. CurrentPage is always within
// [1, TotalPages] and TotalPages is at least 1.
type State struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// Controller owns a paging State and keeps the browser Location in step with
// it. Navigation outside the valid range is ignored rather than clamped.
// Safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	state    State
	location nav.Location
	onChange func(State, nav.Location)
}

// NewController starts at loc's page, clamped to totalPages.
func NewController(loc nav.Location, totalPages int) *Controller {
	c := &Controller{location: loc}
	c.state = normalize(State{CurrentPage: loc.Page, TotalPages: totalPages})
	c.location.Page = c.state.CurrentPage
	return c
}

func normalize(s State) State {
	if s.TotalPages < 1 {
		s.TotalPages = 1
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	if s.CurrentPage > s.TotalPages {
		s.CurrentPage = s.TotalPages
	}
	return s
}

// OnChange registers fn to run after every accepted page change.
func (c *Controller) OnChange(fn func(State, nav.Location)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Location returns the current location.
func (c *Controller) Location() nav.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// Window returns the page buttons for the current state.
func (c *Controller) Window() []PageItem {
	s := c.State()
	return ComputePageWindow(s.CurrentPage, s.TotalPages)
}

// GoTo moves to target. It reports false and changes nothing when target is
// outside [1, TotalPages]. Otherwise the location's page is updated and its
// detail panel is closed.
func (c *Controller) GoTo(target int) bool {
	c.mu.Lock()
	if target < 1 || target > c.state.TotalPages {
		c.mu.Unlock()
		return false
	}
	c.state.CurrentPage = target
	c.location = c.location.WithPage(target)
	s, loc, fn := c.state, c.location, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(s, loc)
	}
	return true
}

// Next moves one page forward if possible.
func (c *Controller) Next() bool {
	return c.GoTo(c.State().CurrentPage + 1)
}

// Prev moves one page back if possible.
func (c *Controller) Prev() bool {
	return c.GoTo(c.State().CurrentPage - 1)
}

// SetTotalPages updates the page count after a fetch reports a new total.
// The current page is clamped into range and the location follows it.
func (c *Controller) SetTotalPages(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.state.CurrentPage
	c.state = normalize(State{CurrentPage: c.state.CurrentPage, TotalPages: total})
	if c.state.CurrentPage != before {
		c.location = c.location.WithPage(c.state.CurrentPage)
	}
}

// SelectDetails opens the detail panel for id without changing the page.
func (c *Controller) SelectDetails(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = c.location.WithDetails(id)
}
