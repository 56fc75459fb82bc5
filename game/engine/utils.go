package engine

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sign returns -1, 0 or 1
func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Col-to.Col) + abs(from.Row-to.Row)
}

// PathCost sums the 10/14 step costs along a path
func PathCost(path []Position) int {
	cost := 0
	for i := 1; i < len(path); i++ {
		if path[i].Col != path[i-1].Col && path[i].Row != path[i-1].Row {
			cost += DiagonalCost
		} else {
			cost += OrthogonalCost
		}
	}
	return cost
}
