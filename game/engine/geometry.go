package engine

import "math"

// Grid converts a pixel coordinate to a cell index: floor(round(pixel / tileSize))
func Grid(pixel float64, tileSize int) int {
	if tileSize <= 0 {
		return 0
	}
	return int(math.Floor(math.Round(pixel / float64(tileSize))))
}

// Snap aligns a pixel coordinate to the origin of its cell
func Snap(pixel float64, tileSize int) float64 {
	return float64(Grid(pixel, tileSize) * tileSize)
}

// ToCell converts a host coordinate to a cell index. Pixel input is
// floor-divided by the tile size; tile input is floored.
func ToCell(v float64, unit Unit, tileSize int) int {
	if unit == Pixels {
		if tileSize <= 0 {
			return 0
		}
		return int(math.Floor(v / float64(tileSize)))
	}
	return int(math.Floor(v))
}

// ToPixels converts a cell index to the pixel coordinate of its origin
func ToPixels(cell, tileSize int) float64 {
	return float64(cell * tileSize)
}

// Line traces the lattice points from x1,y1 to x2,y2 inclusive using
// Bresenham's algorithm
func Line(x1, y1, x2, y2 int) []Position {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	stepX, stepY := 1, 1
	if x2 < x1 {
		stepX = -1
	}
	if y2 < y1 {
		stepY = -1
	}

	points := make([]Position, 0, max(dx, dy)+1)
	err := dx - dy
	x, y := x1, y1
	for {
		points = append(points, Position{Col: x, Row: y})
		if x == x2 && y == y2 {
			return points
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += stepX
		}
		if e2 < dx {
			err += dx
			y += stepY
		}
	}
}

// distance returns the Euclidean distance between two cells
func distance(a, b Position) float64 {
	dx := float64(a.Col - b.Col)
	dy := float64(a.Row - b.Row)
	return math.Sqrt(dx*dx + dy*dy)
}
