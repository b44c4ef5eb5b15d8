// Package detail renders the Pokémon detail panel from a query result.
//
// The panel is loaded lazily when a row is opened. While the lookup is in
// flight it shows a loading line; a failure is shown inline with a hint to
// retry with 'r' so the list behind it stays usable.
package detail
