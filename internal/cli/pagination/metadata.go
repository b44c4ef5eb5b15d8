package pagination

// PaginationMeta contains metadata about paginated results.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	CurrentPage int        `json:"current_page" yaml:"current_page"`
	PageSize    int        `json:"page_size"    yaml:"page_size"`
	TotalPages  int        `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int        `json:"total_items"  yaml:"total_items"`
	HasPrevious bool       `json:"has_previous" yaml:"has_previous"`
	HasNext     bool       `json:"has_next"     yaml:"has_next"`
	Pages       []PageItem `json:"pages"        yaml:"pages"`
}

// NewPaginationMeta creates pagination metadata for page out of totalCount
// items, including the page window to render.
func NewPaginationMeta(page, pageSize, totalCount int) PaginationMeta {
	totalPages := TotalPages(totalCount, pageSize)
	if page < 1 {
		page = 1
	}

	return PaginationMeta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
		Pages:       ComputePageWindow(page, totalPages),
	}
}
