package co2

import (
	"sync"
	"time"
)

// DefaultHighlightDelay is how long year-change highlights stay visible.
const DefaultHighlightDelay = time.Second

// Highlights maps a country name to the columns whose value changed.
type Highlights map[string][]Column

// Has reports whether col is highlighted for country.
func (h Highlights) Has(country string, col Column) bool {
	for _, c := range h[country] {
		if c == col {
			return true
		}
	}
	return false
}

// TrackedColumns returns the base columns followed by the displayed optional
// columns, in OptionalColumns order. Non-optional entries in displayed are
// ignored.
func TrackedColumns(displayed []Column) []Column {
	tracked := append([]Column(nil), BaseColumns...)
	for _, opt := range OptionalColumns {
		for _, d := range displayed {
			if d == opt {
				tracked = append(tracked, opt)
				break
			}
		}
	}
	return tracked
}

// Diff compares every country's records for from and to over the tracked
// columns. Countries lacking either year are skipped, and only countries with
// at least one change appear in the result. A missing value differs from any
// present value.
func Diff(ds *Dataset, from, to int, displayed []Column) Highlights {
	out := make(Highlights)
	if from == to {
		return out
	}
	tracked := TrackedColumns(displayed)
	for _, c := range ds.Countries {
		prev, ok := c.Record(from)
		if !ok {
			continue
		}
		next, ok := c.Record(to)
		if !ok {
			continue
		}
		var changed []Column
		for _, col := range tracked {
			if !sameValue(prev.Value(col), next.Value(col)) {
				changed = append(changed, col)
			}
		}
		if len(changed) > 0 {
			out[c.Name] = changed
		}
	}
	return out
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Highlighter holds the current highlights and clears them after a delay.
// A newer Set restarts the delay; a clear scheduled by an older Set never
// removes newer highlights. Safe for concurrent use.
type Highlighter struct {
	delay time.Duration

	mu       sync.Mutex
	current  Highlights
	gen      uint64
	timer    *time.Timer
	onChange func(Highlights)
	closed   bool
}

// NewHighlighter creates a Highlighter. A non-positive delay uses
// DefaultHighlightDelay.
func NewHighlighter(delay time.Duration) *Highlighter {
	if delay <= 0 {
		delay = DefaultHighlightDelay
	}
	return &Highlighter{delay: delay}
}

// OnChange registers fn to be called, outside the lock, whenever the
// highlights are set or cleared.
func (h *Highlighter) OnChange(fn func(Highlights)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Set replaces the highlights and schedules their removal.
func (h *Highlighter) Set(hl Highlights) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.gen++
	gen := h.gen
	h.current = hl
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.delay, func() { h.clear(gen) })
	fn := h.onChange
	h.mu.Unlock()

	if fn != nil {
		fn(hl)
	}
}

func (h *Highlighter) clear(gen uint64) {
	h.mu.Lock()
	if h.closed || gen != h.gen {
		h.mu.Unlock()
		return
	}
	h.current = nil
	h.timer = nil
	fn := h.onChange
	h.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}

// Current returns the active highlights, or nil.
func (h *Highlighter) Current() Highlights {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Close stops any pending clear. Later calls to Set are ignored.
func (h *Highlighter) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
