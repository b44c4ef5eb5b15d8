package co2

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is().
var (
	// ErrUnknownColumn is returned for a column name the table does not have.
	ErrUnknownColumn = constError("unknown column")

	// ErrUnknownCountry is returned when a lookup names no country in the dataset.
	ErrUnknownCountry = constError("unknown country")

	// ErrNoData is returned when a country has no record for the requested year.
	ErrNoData = constError("no data for year")

	// ErrDatasetLoad wraps failures to fetch or decode the dataset.
	ErrDatasetLoad = constError("failed to load CO2 dataset")

	// ErrCalculationOverflow indicates a value too large to convert safely.
	ErrCalculationOverflow = constError("calculation overflow")
)
