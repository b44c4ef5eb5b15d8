// Package query defines the Pokémon list and detail queries on top of the
// query cache and the async Observer that views use to follow them.
//
// List resolves a page of summaries and then fans out one detail request per
// summary; the page fails as a whole if any request fails. ByKey looks up a
// single Pokémon by id or name. Both share in-flight requests through the
// cache, so concurrent callers for the same page or term cause one round trip.
package query
