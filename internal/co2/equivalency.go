package co2

import (
	"fmt"
	"math"
)

// EPA greenhouse gas equivalency factors (2024 edition), in kg CO2e per
// unit of activity. Source:
// https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per smartphone charge.
	EPASmartphoneChargeFactor = 0.00822

	// EPAHomeYearFactor is kg CO2e per year of average US home electricity.
	EPAHomeYearFactor = 18.3 * 365
)

// MegatonnesToKg converts the dataset's million-tonne figures to kilograms.
const MegatonnesToKg = 1e9

// Equivalency kinds.
const (
	EquivalencyMilesDriven        = "miles_driven"
	EquivalencySmartphonesCharged = "smartphones_charged"
	EquivalencyHomeYears          = "home_years"
)

// EquivalencyResult is one activity equivalent to an emission.
type EquivalencyResult struct {
	Type           string  `json:"type"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formatted_value"`
	Label          string  `json:"label"`
}

// Equivalency describes an emission in everyday terms.
type Equivalency struct {
	InputKg     float64             `json:"input_kg"`
	Results     []EquivalencyResult `json:"results,omitempty"`
	DisplayText string              `json:"display_text,omitempty"`
	IsEmpty     bool                `json:"is_empty"`
}

// Equivalent converts megatonnes of CO2 into miles driven, smartphones charged
// and years of home electricity. Zero yields an empty result.
func Equivalent(megatonnes float64) (Equivalency, error) {
	if megatonnes < 0 {
		return Equivalency{IsEmpty: true}, fmt.Errorf("negative emission %v", megatonnes)
	}
	kg := megatonnes * MegatonnesToKg
	if kg == 0 {
		return Equivalency{IsEmpty: true}, nil
	}

	miles := kg / EPAMilesDrivenFactor
	phones := kg / EPASmartphoneChargeFactor
	homes := kg / EPAHomeYearFactor
	for _, v := range []float64{kg, miles, phones, homes} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Equivalency{IsEmpty: true}, ErrCalculationOverflow
		}
	}

	results := []EquivalencyResult{
		{Type: EquivalencyMilesDriven, Value: miles, FormattedValue: FormatLarge(miles), Label: "miles driven"},
		{Type: EquivalencySmartphonesCharged, Value: phones, FormattedValue: FormatLarge(phones), Label: "smartphones charged"},
		{Type: EquivalencyHomeYears, Value: homes, FormattedValue: FormatLarge(homes), Label: "home-years of electricity"},
	}
	return Equivalency{
		InputKg: kg,
		Results: results,
		DisplayText: fmt.Sprintf("Equivalent to driving %s miles or charging %s smartphones",
			results[0].FormattedValue, results[1].FormattedValue),
	}, nil
}

// CountryEquivalent looks up country's co2 for year and converts it.
func CountryEquivalent(ds *Dataset, country string, year int) (Equivalency, error) {
	c, ok := ds.Country(country)
	if !ok {
		return Equivalency{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	rec, ok := c.Record(year)
	if !ok || rec.CO2 == nil {
		return Equivalency{}, fmt.Errorf("%w: %s %d", ErrNoData, country, year)
	}
	return Equivalent(*rec.CO2)
}
