package engine

// GridMap owns the cell array, indexed [col][row]
type GridMap struct {
	width  int
	height int
	cells  [][]Cell
}

// NewGridMap creates a grid with every cell walkable and unseen
func NewGridMap(width, height int) *GridMap {
	if width < MinGridSize {
		width = MinGridSize
	}
	if height < MinGridSize {
		height = MinGridSize
	}

	cells := make([][]Cell, width)
	for col := range cells {
		cells[col] = make([]Cell, height)
		for row := range cells[col] {
			cells[col][row] = Cell{Type: Walkable, Walkable: true}
		}
	}

	return &GridMap{width: width, height: height, cells: cells}
}

// Width returns the number of columns
func (g *GridMap) Width() int { return g.width }

// Height returns the number of rows
func (g *GridMap) Height() int { return g.height }

// InBounds reports whether col,row addresses a real cell
func (g *GridMap) InBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.width && row < g.height
}

// Clamp pulls a position into the grid
func (g *GridMap) Clamp(p Position) Position {
	return Position{
		Col: clamp(p.Col, 0, g.width-1),
		Row: clamp(p.Row, 0, g.height-1),
	}
}

// Cell returns a copy of the cell at col,row. Out-of-range input is clamped.
func (g *GridMap) Cell(col, row int) Cell {
	p := g.Clamp(Position{Col: col, Row: row})
	return g.cells[p.Col][p.Row]
}

// cell returns a pointer for in-package mutation, clamped like Cell
func (g *GridMap) cell(col, row int) *Cell {
	p := g.Clamp(Position{Col: col, Row: row})
	return &g.cells[p.Col][p.Row]
}

// SetWalkable updates the walkable flag and node type of one cell
func (g *GridMap) SetWalkable(col, row int, walkable bool) {
	c := g.cell(col, row)
	c.Walkable = walkable
	if walkable {
		c.Type = Walkable
	} else {
		c.Type = Unwalkable
	}
}

// SetBlockSight updates the sight-blocking flag of one cell
func (g *GridMap) SetBlockSight(col, row int, block bool) {
	g.cell(col, row).BlockSight = block
}

// SetCells snaps each pixel position to its cell and applies the given
// attributes. A nil attribute is left untouched. Positions outside the
// grid are ignored rather than clamped so that off-map objects never
// carve the border.
func (g *GridMap) SetCells(positions []PixelPos, tileSize int, walkable, blockSight *bool) int {
	changed := 0
	for _, pos := range positions {
		col := Grid(pos.X, tileSize)
		row := Grid(pos.Y, tileSize)
		if !g.InBounds(col, row) {
			continue
		}
		if walkable != nil {
			g.SetWalkable(col, row, *walkable)
		}
		if blockSight != nil {
			g.SetBlockSight(col, row, *blockSight)
		}
		changed++
	}
	return changed
}

// bounds returns the clamped half-open square [o-r, o+r+1) on both axes
func (g *GridMap) bounds(origin Position, radius int) (minCol, minRow, maxCol, maxRow int) {
	if radius < 0 {
		radius = 0
	}
	minCol = clamp(origin.Col-radius, 0, g.width)
	maxCol = clamp(origin.Col+radius+1, 0, g.width)
	minRow = clamp(origin.Row-radius, 0, g.height)
	maxRow = clamp(origin.Row+radius+1, 0, g.height)
	return
}

// copyCells returns a deep copy of the cell array
func (g *GridMap) copyCells() [][]Cell {
	out := make([][]Cell, g.width)
	for col := range g.cells {
		out[col] = make([]Cell, g.height)
		copy(out[col], g.cells[col])
	}
	return out
}

// counts returns the number of currently visible and ever-seen cells
func (g *GridMap) counts() (visible, explored int) {
	for col := range g.cells {
		for _, c := range g.cells[col] {
			if c.Sight {
				visible++
			}
			if c.AlreadySeen {
				explored++
			}
		}
	}
	return
}

// ResetMarkers returns any Start or Goal cells left on the grid to their
// walkable type
func (g *GridMap) ResetMarkers() {
	for col := range g.cells {
		for row := range g.cells[col] {
			c := &g.cells[col][row]
			if c.Type == Start || c.Type == Goal {
				c.Type = Walkable
			}
		}
	}
}
