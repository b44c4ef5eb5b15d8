package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. focused is true for the row under the cursor.
type RenderFunc[T any] func(item T, focused bool) string

// Model is a scrolling list with a cursor.
type Model[T any] struct {
	items  []T
	render RenderFunc[T]
	cursor int
	// offset is the first rendered item.
	offset int
	height int
	empty  string
}

// New creates a list showing height rows.
func New[T any](height int, render RenderFunc[T]) *Model[T] {
	if height < 1 {
		height = 1
	}
	return &Model[T]{render: render, height: height, empty: "No items."}
}

// SetEmptyText sets what View shows for an empty list.
func (m *Model[T]) SetEmptyText(s string) {
	m.empty = s
}

// SetItems replaces the items and moves the cursor to the top.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.cursor = 0
	m.offset = 0
}

// Items returns the current items.
func (m *Model[T]) Items() []T {
	return m.items
}

// Len returns the number of items.
func (m *Model[T]) Len() int {
	return len(m.items)
}

// SetHeight changes the number of visible rows.
func (m *Model[T]) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	m.height = h
	m.scroll()
}

// Height returns the number of visible rows.
func (m *Model[T]) Height() int {
	return m.height
}

// Cursor returns the index of the focused item.
func (m *Model[T]) Cursor() int {
	return m.cursor
}

// SetCursor focuses index, clamped to the items.
func (m *Model[T]) SetCursor(index int) {
	switch {
	case len(m.items) == 0 || index < 0:
		m.cursor = 0
	case index >= len(m.items):
		m.cursor = len(m.items) - 1
	default:
		m.cursor = index
	}
	m.scroll()
}

// Focused returns the item under the cursor, or false for an empty list.
func (m *Model[T]) Focused() (T, bool) {
	var zero T
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return zero, false
	}
	return m.items[m.cursor], true
}

// Update moves the cursor for up/down, k/j, pgup/pgdown, home and end.
func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		m.SetCursor(m.cursor - 1)
	case "down", "j":
		m.SetCursor(m.cursor + 1)
	case "pgup":
		m.SetCursor(m.cursor - m.height)
	case "pgdown":
		m.SetCursor(m.cursor + m.height)
	case "home", "g":
		m.SetCursor(0)
	case "end", "G":
		m.SetCursor(len(m.items) - 1)
	}
	return nil
}

// scroll keeps the cursor within [offset, offset+height).
func (m *Model[T]) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if maxOffset := len(m.items) - m.height; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}

// VisibleRange returns the rendered item indexes [from, to).
func (m *Model[T]) VisibleRange() (from, to int) {
	return m.offset, min(m.offset+m.height, len(m.items))
}

// View renders the visible rows.
func (m *Model[T]) View() string {
	if len(m.items) == 0 {
		return m.empty
	}
	from, to := m.VisibleRange()
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.render(m.items[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}
