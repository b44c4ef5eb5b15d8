package co2

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction. DirectionNone means unsorted.
type Direction int

// Sort directions.
const (
	DirectionNone Direction = iota
	DirectionAsc
	DirectionDesc
)

// String returns "asc", "desc" or "none".
func (d Direction) String() string {
	switch d {
	case DirectionAsc:
		return "asc"
	case DirectionDesc:
		return "desc"
	default:
		return "none"
	}
}

// Column header indicators.
const (
	IndicatorUnsorted = " ↕"
	IndicatorAsc      = " ↑"
	IndicatorDesc     = " ↓"
)

// SortState is the active sort. The zero value is unsorted.
type SortState struct {
	Column    Column
	Direction Direction
}

// Active reports whether rows are sorted.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != DirectionNone
}

// Toggle cycles col through asc, desc and unsorted. Selecting a different
// column starts at asc.
func (s SortState) Toggle(col Column) SortState {
	if s.Column != col || !s.Active() {
		return SortState{Column: col, Direction: DirectionAsc}
	}
	if s.Direction == DirectionAsc {
		return SortState{Column: col, Direction: DirectionDesc}
	}
	return SortState{}
}

// Indicator returns the header suffix for col.
func (s SortState) Indicator(col Column) string {
	if !s.Active() || s.Column != col {
		return IndicatorUnsorted
	}
	if s.Direction == DirectionAsc {
		return IndicatorAsc
	}
	return IndicatorDesc
}

// String renders the state as "column:asc", or "" when unsorted.
func (s SortState) String() string {
	if !s.Active() {
		return ""
	}
	return string(s.Column) + ":" + s.Direction.String()
}

// ParseSortState parses "column", "column:asc" or "column:desc".
// An empty string is unsorted.
func ParseSortState(s string) (SortState, error) {
	if s == "" {
		return SortState{}, nil
	}
	name, dir, hasDir := strings.Cut(s, ":")
	col, err := ParseColumn(name)
	if err != nil {
		return SortState{}, err
	}
	state := SortState{Column: col, Direction: DirectionAsc}
	if hasDir {
		switch strings.ToLower(dir) {
		case "asc":
		case "desc":
			state.Direction = DirectionDesc
		default:
			return SortState{}, fmt.Errorf("invalid sort direction %q: must be asc or desc", dir)
		}
	}
	return state, nil
}

// SortRows sorts rows in place. Missing values always come last, in either
// direction. The sort is stable; an inactive state leaves rows untouched.
func SortRows(rows []Row, s SortState) {
	if !s.Active() {
		return
	}
	sign := 1
	if s.Direction == DirectionDesc {
		sign = -1
	}

	if s.Column.IsMetric() {
		slices.SortStableFunc(rows, func(a, b Row) int {
			va, vb := a.Value(s.Column), b.Value(s.Column)
			if c, done := compareMissing(va == nil, vb == nil); done {
				return c
			}
			return sign * cmp.Compare(*va, *vb)
		})
		return
	}

	col := collate.New(language.English)
	slices.SortStableFunc(rows, func(a, b Row) int {
		ta, tb := a.Text(s.Column), b.Text(s.Column)
		if c, done := compareMissing(ta == "", tb == ""); done {
			return c
		}
		return sign * col.CompareString(ta, tb)
	})
}

// compareMissing orders missing values after present ones. done is false
// when both values are present.
func compareMissing(aMissing, bMissing bool) (int, bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	default:
		return 0, false
	}
}
