package co2

import "strings"

// RegionAll disables region filtering.
const RegionAll = "All"

// Region names produced by ClassifyRegion.
const (
	RegionEurope   = "Europe"
	RegionAsia     = "Asia"
	RegionAfrica   = "Africa"
	RegionAmericas = "Americas"
	RegionOceania  = "Oceania"
)

// regionRules are checked in order; the first rule with a matching
// substring wins.
//
//nolint:gochecknoglobals // Fixed classification table.
var regionRules = []struct {
	region string
	needle []string
}{
	{RegionEurope, []string{"Europe", "European"}},
	{RegionAsia, []string{"Asia", "Asian"}},
	{RegionAfrica, []string{"Africa", "African"}},
	{RegionAmericas, []string{"America"}},
	{RegionOceania, []string{"Oceania"}},
}

// ClassifyRegion maps a country or aggregate name to a region by
// case-sensitive substring match. Only names that mention a region, such as
// "Europe (excl. EU-27)" or "Upper-middle-income countries in Asia", are
// classified; most individual countries are not.
func ClassifyRegion(name string) (string, bool) {
	for _, rule := range regionRules {
		for _, n := range rule.needle {
			if strings.Contains(name, n) {
				return rule.region, true
			}
		}
	}
	return "", false
}
