package engine

// ComputeSight recomputes the currently visible cells from origin.
//
// Every call clears Sight across the whole grid and snapshots AlreadySeen
// into SeenBefore; AlreadySeen itself is never cleared. Rays are cast from
// origin to each cell on the perimeter of the clamped square
// [origin-radius, origin+radius+1), one pass per edge. Walking outward, a
// cell farther than radius is skipped but the ray keeps going; a cell in
// range is marked visible and explored, and a sight-blocking cell is
// marked and then ends its ray.
//
// The ray bundle approximates a field of view. Far from the origin,
// adjacent rays can diverge enough to leave unmarked gaps.
func (g *GridMap) ComputeSight(origin Position, radius int) {
	for col := range g.cells {
		for row := range g.cells[col] {
			c := &g.cells[col][row]
			c.SeenBefore = c.AlreadySeen
			c.Sight = false
		}
	}

	if radius < 0 {
		return
	}
	origin = g.Clamp(origin)
	minCol, minRow, maxCol, maxRow := g.bounds(origin, radius)
	r := float64(radius)

	// top and bottom edges
	for col := minCol; col < maxCol; col++ {
		g.castRay(origin, Position{Col: col, Row: minRow}, r)
		g.castRay(origin, Position{Col: col, Row: maxRow - 1}, r)
	}
	// left and right edges
	for row := minRow; row < maxRow; row++ {
		g.castRay(origin, Position{Col: minCol, Row: row}, r)
		g.castRay(origin, Position{Col: maxCol - 1, Row: row}, r)
	}
}

func (g *GridMap) castRay(origin, target Position, radius float64) {
	for _, p := range Line(origin.Col, origin.Row, target.Col, target.Row) {
		if distance(origin, p) > radius {
			continue
		}
		c := &g.cells[p.Col][p.Row]
		c.Sight = true
		c.AlreadySeen = true
		if c.BlockSight {
			break
		}
	}
}
