// Package pokeapi is the HTTP adapter for the Pokémon REST API.
//
// It issues GET requests against the paginated list endpoint and the
// by-id-or-name detail endpoint and normalises failures into typed errors:
// ErrNotFound for a 404, *HTTPError for any other non-2xx status and
// *NetworkError when no response was received. Nothing is retried.
package pokeapi
