package co2

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for missing values.
const NotAvailable = "N/A"

// cellPrecision is the number of decimals shown for metric cells.
const cellPrecision = 2

// Thresholds for abbreviated display.
const (
	millionThreshold  = 1e6
	billionThreshold  = 1e9
	trillionThreshold = 1e12
)

//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatCell renders a table cell for col. Missing values are "N/A",
// population is a whole number and every other metric has two decimals.
func FormatCell(col Column, v *float64) string {
	if v == nil {
		return NotAvailable
	}
	if col == ColPopulation {
		return FormatNumber(int64(math.Round(*v)))
	}
	return FormatFloat(*v, cellPrecision)
}

// FormatNumber formats an integer with thousand separators: 18248 → "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats f with precision decimals and thousand separators:
// FormatFloat(1234.567, 2) → "1,234.57".
func FormatFloat(f float64, precision int) string {
	formatted := fmt.Sprintf("%.*f", precision, f)
	if precision <= 0 {
		return groupInt(formatted)
	}
	intPart, frac, _ := strings.Cut(formatted, ".")
	return groupInt(intPart) + "." + frac
}

// groupInt inserts separators into a formatted integer, keeping the sign
// and values printer cannot hold in an int64 as they are.
func groupInt(s string) string {
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return s
	}
	if n == 0 && strings.HasPrefix(s, "-") {
		return "-0"
	}
	return FormatNumber(n)
}

// FormatLarge abbreviates large magnitudes: "~1.5 million", "~2.0 billion",
// "~57.3 trillion". Smaller values are whole numbers with separators.
func FormatLarge(n float64) string {
	switch {
	case n >= trillionThreshold:
		return fmt.Sprintf("~%.1f trillion", n/trillionThreshold)
	case n >= billionThreshold:
		return fmt.Sprintf("~%.1f billion", n/billionThreshold)
	case n >= millionThreshold:
		return fmt.Sprintf("~%.1f million", n/millionThreshold)
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}
