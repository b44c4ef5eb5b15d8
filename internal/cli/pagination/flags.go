package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Pagination defaults and sort orders.
const (
	DefaultPage      = 1
	DefaultSortField = ""
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Common validation errors.
var (
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'co2:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrUnalignedOffset   = errors.New("offset must be a multiple of limit")
)

// PaginationParams holds CLI pagination flags and provides validation.
// Supports two pagination modes:
//   - Offset-based: --limit and --offset
//   - Page-based: --page and --page-size
//
// These modes are mutually exclusive.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	// Limit is the maximum number of results to return (offset-based mode).
	Limit int

	// Offset is the number of results to skip (offset-based mode).
	Offset int

	// Page is the 1-based page number (page-based mode).
	Page int

	// PageSize is the number of results per page. Zero means the configured
	// default.
	PageSize int
}

// NewPaginationParams creates a PaginationParams with no flags set.
func NewPaginationParams() *PaginationParams {
	return &PaginationParams{}
}

// Validate checks if the pagination parameters are valid and consistent (value receiver).
func (p PaginationParams) Validate() error {
	if p.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if p.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if p.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if p.PageSize < 0 {
		return errors.New("page-size cannot be negative")
	}
	if p.Page > 0 && (p.Offset > 0 || p.Limit > 0) {
		return errors.New("page and offset/limit parameters are mutually exclusive")
	}
	return nil
}

// IsPageBased returns true if page-based pagination is active.
func (p PaginationParams) IsPageBased() bool {
	return p.Page > 0 || (p.Limit == 0 && p.Offset == 0)
}

// IsOffsetBased returns true if offset-based pagination is active.
func (p PaginationParams) IsOffsetBased() bool {
	return !p.IsPageBased()
}

// ResolvePage converts the flags into the page-based request the API layer
// takes. defaultPageSize fills in an unset page size. Offset-based flags must
// land on a page boundary.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func (p PaginationParams) ResolvePage(defaultPageSize int) (page, pageSize int, err error) {
	if err = p.Validate(); err != nil {
		return 0, 0, err
	}

	if p.IsPageBased() {
		page, pageSize = p.Page, p.PageSize
		if page == 0 {
			page = DefaultPage
		}
		if pageSize == 0 {
			pageSize = defaultPageSize
		}
		return page, pageSize, nil
	}

	pageSize = p.Limit
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if p.Offset%pageSize != 0 {
		return 0, 0, fmt.Errorf("%w: offset=%d limit=%d", ErrUnalignedOffset, p.Offset, pageSize)
	}
	return p.Offset/pageSize + 1, pageSize, nil
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "co2", "population:desc", "name:asc"
// Returns the field name and order, or an error if invalid.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return DefaultSortField, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return field, order, nil
}

// ApplyToSlice returns the page of items selected by p. For page-based
// pagination an out-of-range page is capped to the last available page;
// offset-based pagination past the end returns an empty slice.
func ApplyToSlice[T any](p PaginationParams, items []T, defaultPageSize int) []T {
	if len(items) == 0 {
		return items
	}

	page, pageSize, err := p.ResolvePage(defaultPageSize)
	if err != nil || pageSize <= 0 {
		return items
	}
	offset := (page - 1) * pageSize

	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / pageSize) * pageSize
	}
	if offset >= len(items) {
		return []T{}
	}

	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
