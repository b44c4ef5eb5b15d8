// Package pagination provides the page window, the paging controller and
// the CLI pagination flags shared by list commands.
//
// This package contains:
//   - ComputePageWindow: the page buttons around the current page
//   - Controller: page state kept in step with the browser location
//   - PaginationParams: CLI flag parsing and validation
//   - PaginationMeta: Response metadata for paginated results
package pagination
