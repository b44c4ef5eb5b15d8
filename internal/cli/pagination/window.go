package pagination

import "strconv"

// Window shape constants.
const (
	// fullWindowMax is the largest total shown without ellipses.
	fullWindowMax = 11
	// edgeWindow is the number of pages shown next to the first or last page.
	edgeWindow = 10
	// windowRadius is the number of pages on each side of the current page.
	windowRadius = 5
	// Ellipsis marks a gap in the page sequence.
	Ellipsis = "..."
)

// PageItem is one element of a page window: a page number or an ellipsis.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// String renders the page number or "...".
func (p PageItem) String() string {
	if p.Ellipsis {
		return Ellipsis
	}
	return strconv.Itoa(p.Page)
}

// ComputePageWindow returns the page buttons to show for current out of total:
//   - total <= 11: every page
//   - current <= 6: 1..10, ..., total
//   - current >= total-5: 1, ..., the last 10 pages
//   - otherwise: 1, ..., current-5..current+5, ..., total
func ComputePageWindow(current, total int) []PageItem {
	if total < 1 {
		return nil
	}
	if total <= fullWindowMax {
		return pageRange(nil, 1, total)
	}

	gap := PageItem{Ellipsis: true}
	switch {
	case current <= windowRadius+1:
		items := pageRange(nil, 1, edgeWindow)
		return append(items, gap, PageItem{Page: total})
	case current >= total-windowRadius:
		items := []PageItem{{Page: 1}, gap}
		return pageRange(items, total-edgeWindow+1, total)
	default:
		items := []PageItem{{Page: 1}, gap}
		items = pageRange(items, current-windowRadius, current+windowRadius)
		return append(items, gap, PageItem{Page: total})
	}
}

func pageRange(dst []PageItem, from, to int) []PageItem {
	for p := from; p <= to; p++ {
		dst = append(dst, PageItem{Page: p})
	}
	return dst
}

// TotalPages returns the number of pages needed for count items; at least 1.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}
