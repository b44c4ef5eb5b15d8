package co2

import (
	"fmt"
	"sort"
)

// Column names a table column. Metric columns match the dataset's JSON keys.
type Column string

// Table columns.
const (
	ColName                     Column = "name"
	ColISOCode                  Column = "iso_code"
	ColRegion                   Column = "region"
	ColPopulation               Column = "population"
	ColCO2                      Column = "co2"
	ColCO2PerCapita             Column = "co2_per_capita"
	ColMethane                  Column = "methane"
	ColOilCO2                   Column = "oil_co2"
	ColGasCO2                   Column = "gas_co2"
	ColCoalCO2                  Column = "coal_co2"
	ColTotalGHG                 Column = "total_ghg"
	ColTemperatureChangeFromCO2 Column = "temperature_change_from_co2"
)

// BaseColumns are always displayed and always tracked for highlighting.
var BaseColumns = []Column{ColPopulation, ColCO2, ColCO2PerCapita} //nolint:gochecknoglobals // Fixed column set.

// OptionalColumns can be added to the table by the user.
//
//nolint:gochecknoglobals // Fixed column set.
var OptionalColumns = []Column{
	ColMethane, ColOilCO2, ColGasCO2, ColCoalCO2, ColTotalGHG, ColTemperatureChangeFromCO2,
}

// IsMetric reports whether c holds a numeric yearly value.
func (c Column) IsMetric() bool {
	switch c {
	case ColName, ColISOCode, ColRegion:
		return false
	default:
		return isKnownMetric(c)
	}
}

// IsOptional reports whether c is one of OptionalColumns.
func (c Column) IsOptional() bool {
	for _, o := range OptionalColumns {
		if c == o {
			return true
		}
	}
	return false
}

// Title is the header label, e.g. "CO2 PER CAPITA".
func (c Column) Title() string {
	out := []byte(c)
	for i, b := range out {
		switch {
		case b == '_':
			out[i] = ' '
		case b >= 'a' && b <= 'z':
			out[i] = b - 'a' + 'A'
		}
	}
	return string(out)
}

func isKnownMetric(c Column) bool {
	for _, b := range BaseColumns {
		if c == b {
			return true
		}
	}
	return c.IsOptional()
}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	c := Column(s)
	switch {
	case c == ColName, c == ColISOCode, c == ColRegion, isKnownMetric(c):
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
	}
}

// YearlyRecord is one country's figures for one year. Absent metrics are nil.
type YearlyRecord struct {
	Year                     int      `json:"year"`
	ISOCode                  string   `json:"iso_code,omitempty"`
	Population               *float64 `json:"population,omitempty"`
	CO2                      *float64 `json:"co2,omitempty"`
	CO2PerCapita             *float64 `json:"co2_per_capita,omitempty"`
	Methane                  *float64 `json:"methane,omitempty"`
	OilCO2                   *float64 `json:"oil_co2,omitempty"`
	GasCO2                   *float64 `json:"gas_co2,omitempty"`
	CoalCO2                  *float64 `json:"coal_co2,omitempty"`
	TotalGHG                 *float64 `json:"total_ghg,omitempty"`
	TemperatureChangeFromCO2 *float64 `json:"temperature_change_from_co2,omitempty"`
}

// Value returns the metric for col, or nil when absent or not a metric.
func (r YearlyRecord) Value(col Column) *float64 {
	switch col {
	case ColPopulation:
		return r.Population
	case ColCO2:
		return r.CO2
	case ColCO2PerCapita:
		return r.CO2PerCapita
	case ColMethane:
		return r.Methane
	case ColOilCO2:
		return r.OilCO2
	case ColGasCO2:
		return r.GasCO2
	case ColCoalCO2:
		return r.CoalCO2
	case ColTotalGHG:
		return r.TotalGHG
	case ColTemperatureChangeFromCO2:
		return r.TemperatureChangeFromCO2
	default:
		return nil
	}
}

// Country is a named series of yearly records.
type Country struct {
	Name    string         `json:"name"`
	ISOCode string         `json:"iso_code,omitempty"`
	Records []YearlyRecord `json:"records"`
}

// Record returns the record for year.
func (c Country) Record(year int) (YearlyRecord, bool) {
	for _, r := range c.Records {
		if r.Year == year {
			return r, true
		}
	}
	return YearlyRecord{}, false
}

// Dataset is the normalised input: countries sorted by name, each with at
// least one record. It is never modified after loading.
type Dataset struct {
	Countries []Country `json:"countries"`
}

// Country looks a country up by exact name.
func (d *Dataset) Country(name string) (Country, bool) {
	i := sort.Search(len(d.Countries), func(i int) bool { return d.Countries[i].Name >= name })
	if i < len(d.Countries) && d.Countries[i].Name == name {
		return d.Countries[i], true
	}
	return Country{}, false
}

// AvailableYears lists every year present in the dataset, newest first.
func (d *Dataset) AvailableYears() []int {
	seen := make(map[int]struct{})
	for _, c := range d.Countries {
		for _, r := range c.Records {
			seen[r.Year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// AvailableRegions returns RegionAll followed by every region some country
// classifies into, sorted.
func (d *Dataset) AvailableRegions() []string {
	seen := make(map[string]struct{})
	for _, c := range d.Countries {
		if r, ok := ClassifyRegion(c.Name); ok {
			seen[r] = struct{}{}
		}
	}
	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return append([]string{RegionAll}, regions...)
}
