package co2

import (
	"fmt"
	"sync"
	"time"
)

// DefaultYear is the year selected when none is given.
const DefaultYear = 2023

// Table is the interactive state of the emissions table: the selected year,
// filters, sort, displayed optional columns and the transient year-change
// highlights. Rows are recomputed from that state on every call.
type Table struct {
	ds          *Dataset
	highlighter *Highlighter

	mu      sync.RWMutex
	query   Query
	columns []Column
}

// NewTable creates a table over ds showing year. Highlights are cleared
// after delay.
func NewTable(ds *Dataset, year int, delay time.Duration) *Table {
	return &Table{
		ds:          ds,
		highlighter: NewHighlighter(delay),
		query:       Query{Year: year, Region: RegionAll},
	}
}

// Dataset returns the underlying dataset.
func (t *Table) Dataset() *Dataset { return t.ds }

// Highlighter returns the table's highlighter.
func (t *Table) Highlighter() *Highlighter { return t.highlighter }

// Query returns the current query.
func (t *Table) Query() Query {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.query
}

// Columns returns the displayed columns: base columns then selected optional
// columns in OptionalColumns order.
func (t *Table) Columns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TrackedColumns(t.columns)
}

// Rows derives the visible rows.
func (t *Table) Rows() []Row {
	return Derive(t.ds, t.Query())
}

// SetYear selects year and highlights the cells that changed from the
// previous year.
func (t *Table) SetYear(year int) {
	t.mu.Lock()
	prev := t.query.Year
	t.query.Year = year
	displayed := append([]Column(nil), t.columns...)
	t.mu.Unlock()

	if prev == year {
		return
	}
	t.highlighter.Set(Diff(t.ds, prev, year, displayed))
}

// SetSearch sets the name filter.
func (t *Table) SetSearch(term string) {
	t.mu.Lock()
	t.query.Search = term
	t.mu.Unlock()
}

// SetRegion sets the region filter.
func (t *Table) SetRegion(region string) {
	t.mu.Lock()
	t.query.Region = region
	t.mu.Unlock()
}

// ToggleSort cycles the sort on col.
func (t *Table) ToggleSort(col Column) SortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.Sort = t.query.Sort.Toggle(col)
	return t.query.Sort
}

// SetSort replaces the sort.
func (t *Table) SetSort(s SortState) {
	t.mu.Lock()
	t.query.Sort = s
	t.mu.Unlock()
}

// SetColumns replaces the displayed optional columns.
func (t *Table) SetColumns(cols []Column) error {
	for _, c := range cols {
		if !c.IsOptional() {
			return fmt.Errorf("%w: %q is not an optional column", ErrUnknownColumn, c)
		}
	}
	t.mu.Lock()
	t.columns = append([]Column(nil), cols...)
	t.mu.Unlock()
	return nil
}

// ToggleColumn shows or hides an optional column.
func (t *Table) ToggleColumn(col Column) error {
	if !col.IsOptional() {
		return fmt.Errorf("%w: %q is not an optional column", ErrUnknownColumn, col)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.columns {
		if c == col {
			t.columns = append(t.columns[:i], t.columns[i+1:]...)
			return nil
		}
	}
	t.columns = append(t.columns, col)
	return nil
}

// Close stops the highlighter.
func (t *Table) Close() {
	t.highlighter.Close()
}
