// Package co2 derives the CO₂ emissions table from the per-country yearly
// dataset.
//
// Every view is recomputed from its inputs in a fixed order: project the
// dataset onto the selected year, classify each country into a region,
// filter by name, filter by region, then sort. Nothing is patched in place.
//
// Changing the selected year highlights, per country, the tracked metric
// columns whose values differ between the two years. Highlights are
// transient and are cleared by a Highlighter after a short delay.
package co2
