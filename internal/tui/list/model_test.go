package listview

import (
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func render(item int, focused bool) string {
	if focused {
		return ">" + strconv.Itoa(item)
	}
	return " " + strconv.Itoa(item)
}

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestModel_Empty(t *testing.T) {
	m := New(3, render)
	assert.Equal(t, "No items.", m.View())
	_, ok := m.Focused()
	assert.False(t, ok)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_ScrollsWithCursor(t *testing.T) {
	m := New(3, render)
	m.SetItems(numbers(10))

	assert.Equal(t, ">0\n 1\n 2", m.View())

	for range 4 {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 4, m.Cursor())
	from, to := m.VisibleRange()
	assert.Equal(t, 2, from)
	assert.Equal(t, 5, to)

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 9, m.Cursor())
	assert.True(t, strings.HasSuffix(m.View(), ">9"))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 8, m.Cursor())

	m.Update(tea.KeyMsg{Type: tea.KeyHome})
	from, _ = m.VisibleRange()
	assert.Equal(t, 0, from)
}

func TestModel_ClampsAtEdges(t *testing.T) {
	m := New(5, render)
	m.SetItems(numbers(3))

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.Cursor())

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 2, m.Cursor())
	item, ok := m.Focused()
	assert.True(t, ok)
	assert.Equal(t, 2, item)
}

func TestModel_SetItemsResetsCursor(t *testing.T) {
	m := New(2, render)
	m.SetItems(numbers(5))
	m.SetCursor(4)
	m.SetItems(numbers(2))
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, ">0\n 1", m.View())
}
