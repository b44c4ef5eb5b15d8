package pokeapi

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the API answers 404 for a detail lookup. Its
// message is shown verbatim as the "no results" state.
//
//nolint:staticcheck // User-facing message, capitalised on purpose.
var ErrNotFound = errors.New("No Pokémon found")

// HTTPError is a non-2xx, non-404 response.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.Status)
}

// NetworkError is a transport failure: the request never produced a response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
