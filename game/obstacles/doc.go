// Package obstacles keeps an R-tree of host obstacle rectangles so that
// blocking objects can be added, found by region and removed again, and
// maps each rectangle onto the grid cells it covers.
package obstacles
