package engine

import (
	"errors"
	"fmt"
	"strings"
)

// TileMode selects a combination of current and remembered visibility
type TileMode string

const (
	Seen                    TileMode = "seen"
	NotSeen                 TileMode = "not-seen"
	SeenBefore              TileMode = "seen-before"
	NotSeenBefore           TileMode = "not-seen-before"
	SeenAndSeenBefore       TileMode = "seen-and-seen-before"
	SeenAndNotSeenBefore    TileMode = "seen-and-not-seen-before"
	NotSeenAndSeenBefore    TileMode = "not-seen-and-seen-before"
	NotSeenAndNotSeenBefore TileMode = "not-seen-and-not-seen-before"
)

var ErrUnknownTileMode = errors.New("unknown tile mode")

// TileModes lists every mode in a stable order
var TileModes = []TileMode{
	Seen, NotSeen, SeenBefore, NotSeenBefore,
	SeenAndSeenBefore, SeenAndNotSeenBefore, NotSeenAndSeenBefore, NotSeenAndNotSeenBefore,
}

// ParseTileMode resolves a mode name
func ParseTileMode(name string) (TileMode, error) {
	m := TileMode(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range TileModes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTileMode, name)
}

// Visitor is called once per iterated cell with the loop coordinates
type Visitor func(col, row int)

// CheckTile tests a cell against a visibility mode. "Before" refers to the
// explored memory as it stood when the latest sight pass began, so
// SeenAndNotSeenBefore holds exactly for cells that pass revealed.
// Unknown modes report false.
func (g *GridMap) CheckTile(pos Position, mode TileMode) bool {
	c := g.Cell(pos.Col, pos.Row)
	seen, before := c.Sight, c.SeenBefore

	switch mode {
	case Seen:
		return seen
	case NotSeen:
		return !seen
	case SeenBefore:
		return before
	case NotSeenBefore:
		return !before
	case SeenAndSeenBefore:
		return seen && before
	case SeenAndNotSeenBefore:
		return seen && !before
	case NotSeenAndSeenBefore:
		return !seen && before
	case NotSeenAndNotSeenBefore:
		return !seen && !before
	}
	return false
}

// ForEachInRadius calls visit for every cell of the clamped square around
// origin, columns outer and rows inner. The square is fixed before the
// first call, so visit may mutate the grid.
func (g *GridMap) ForEachInRadius(origin Position, radius int, visit Visitor) {
	if visit == nil {
		return
	}
	minCol, minRow, maxCol, maxRow := g.bounds(g.Clamp(origin), radius)
	for col := minCol; col < maxCol; col++ {
		for row := minRow; row < maxRow; row++ {
			visit(col, row)
		}
	}
}

// forEachClearInRadius is ForEachInRadius restricted to cells that do not
// block sight at the moment they are reached
func (g *GridMap) forEachClearInRadius(origin Position, radius int, visit Visitor) {
	if visit == nil {
		return
	}
	g.ForEachInRadius(origin, radius, func(col, row int) {
		if !g.cells[col][row].BlockSight {
			visit(col, row)
		}
	})
}
