// Package listview is a cursor-driven list for Bubble Tea views.
//
// A Model holds the items of one page, tracks the highlighted row and renders
// only the rows that fit the viewport, keeping the cursor in view as it moves.
package listview
