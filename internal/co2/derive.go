package co2

import (
	"strings"

	"golang.org/x/text/cases"
)

// Row is one country projected onto the selected year.
type Row struct {
	Name string
	// ISOCode is empty when the country has no record for the year.
	ISOCode string
	// Region is empty when the name does not classify.
	Region  string
	HasData bool
	Record  YearlyRecord
}

// Value returns the numeric value of col, or nil when absent.
func (r Row) Value(col Column) *float64 {
	if !r.HasData {
		return nil
	}
	return r.Record.Value(col)
}

// Text returns the value of a string column, or "" for metric columns.
func (r Row) Text(col Column) string {
	switch col {
	case ColName:
		return r.Name
	case ColISOCode:
		return r.ISOCode
	case ColRegion:
		return r.Region
	default:
		return ""
	}
}

// Query selects and orders rows.
type Query struct {
	Year   int
	Search string
	Region string
	Sort   SortState
}

// Derive recomputes the visible rows for q. ds is not modified.
func Derive(ds *Dataset, q Query) []Row {
	rows := Project(ds, q.Year)
	rows = FilterSearch(rows, q.Search)
	rows = FilterRegion(rows, q.Region)
	SortRows(rows, q.Sort)
	return rows
}

// Project maps every country onto year, classifying its region. Countries
// without a record for year are kept with HasData false.
func Project(ds *Dataset, year int) []Row {
	rows := make([]Row, 0, len(ds.Countries))
	for _, c := range ds.Countries {
		row := Row{Name: c.Name}
		if rec, ok := c.Record(year); ok {
			row.HasData = true
			row.Record = rec
			row.ISOCode = rec.ISOCode
		}
		row.Region, _ = ClassifyRegion(c.Name)
		rows = append(rows, row)
	}
	return rows
}

// FilterSearch keeps rows whose name contains term, ignoring case. An empty
// term keeps everything.
func FilterSearch(rows []Row, term string) []Row {
	if term == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(fold.String(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRegion keeps rows in region. RegionAll and "" keep everything.
func FilterRegion(rows []Row, region string) []Row {
	if region == "" || region == RegionAll {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}
