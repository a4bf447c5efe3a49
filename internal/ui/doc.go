// Package ui implements the terminal user interface for sizemap using
// Bubbletea. The treemap is painted as a grid of background-colored
// cells; the mouse selects, deletes, and resizes leaves.
package ui
