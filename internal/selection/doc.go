// Package selection holds the set of Pokémon the user picked for export.
//
// A Store is an ordinary value owned by whoever creates it and passed to the
// code that needs it; there is no package-level instance. Export renders a
// Store's items as CSV, and Load/Save persist them between CLI runs.
package selection
