package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Heuristic names an A* estimate of the remaining cost
type Heuristic string

const (
	Manhattan Heuristic = "manhattan"
	Diagonal  Heuristic = "diagonal"
	Euclidean Heuristic = "euclidean"
	// EuclideanRaw is the unscaled straight-line distance, kept for
	// hosts that depend on its search order
	EuclideanRaw Heuristic = "euclidean-raw"
)

var ErrUnknownHeuristic = errors.New("unknown heuristic")

// ParseHeuristic resolves a heuristic name. An empty name selects Manhattan.
func ParseHeuristic(name string) (Heuristic, error) {
	switch h := Heuristic(strings.ToLower(strings.TrimSpace(name))); h {
	case "":
		return Manhattan, nil
	case Manhattan, Diagonal, Euclidean, EuclideanRaw:
		return h, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
}

// forMoves returns the heuristic to run when diagonal moves are allowed.
// Manhattan overestimates a 14-cost diagonal step, so it falls back to
// the octile distance there.
func (h Heuristic) forMoves(allowDiagonal bool) Heuristic {
	if allowDiagonal && (h == Manhattan || h == "") {
		return Diagonal
	}
	return h
}

// Estimate returns the heuristic cost between two cells
func (h Heuristic) Estimate(from, to Position) float64 {
	dx := abs(from.Col - to.Col)
	dy := abs(from.Row - to.Row)

	switch h {
	case Diagonal:
		lo, hi := min(dx, dy), max(dx, dy)
		return float64(lo*DiagonalCost + (hi-lo)*OrthogonalCost)
	case Euclidean:
		return math.Sqrt(float64(dx*dx+dy*dy)) * OrthogonalCost
	case EuclideanRaw:
		return math.Sqrt(float64(dx*dx + dy*dy))
	default:
		return float64((dx + dy) * OrthogonalCost)
	}
}

// neighbor is a relative step with its cost
type neighbor struct {
	dc, dr int
	cost   int
}

var orthogonalNeighbors = []neighbor{
	{dc: 0, dr: -1, cost: OrthogonalCost},
	{dc: 0, dr: 1, cost: OrthogonalCost},
	{dc: -1, dr: 0, cost: OrthogonalCost},
	{dc: 1, dr: 0, cost: OrthogonalCost},
}

var allNeighbors = append(append([]neighbor{}, orthogonalNeighbors...),
	neighbor{dc: -1, dr: -1, cost: DiagonalCost},
	neighbor{dc: 1, dr: -1, cost: DiagonalCost},
	neighbor{dc: -1, dr: 1, cost: DiagonalCost},
	neighbor{dc: 1, dr: 1, cost: DiagonalCost},
)

// searchNode lives in a per-call arena; parent is an arena index or -1
type searchNode struct {
	pos    Position
	parent int
	g      int
	h      float64
	f      float64
}

// Pathfinder runs A* searches over a GridMap. Start and goal are held on
// the instance for the duration of a search, so one Pathfinder must not
// run overlapping searches.
type Pathfinder struct {
	grid  *GridMap
	start Position
	goal  Position

	// Expanded counts nodes popped by the latest search
	Expanded int
}

// NewPathfinder creates a pathfinder bound to a grid
func NewPathfinder(grid *GridMap) *Pathfinder {
	return &Pathfinder{grid: grid}
}

// FindPath returns the lowest-cost walkable route from start to goal,
// inclusive of both ends. It reports false when either end is unwalkable
// or the goal cannot be reached.
func (p *Pathfinder) FindPath(start, goal Position, h Heuristic, allowDiagonal bool) ([]Position, bool) {
	p.Expanded = 0
	start = p.grid.Clamp(start)
	goal = p.grid.Clamp(goal)

	if !p.grid.Cell(start.Col, start.Row).Walkable || !p.grid.Cell(goal.Col, goal.Row).Walkable {
		return nil, false
	}

	p.start, p.goal = start, goal
	p.grid.cell(start.Col, start.Row).Type = Start
	p.grid.cell(goal.Col, goal.Row).Type = Goal
	defer func() {
		p.grid.cell(p.start.Col, p.start.Row).Type = Walkable
		p.grid.cell(p.goal.Col, p.goal.Row).Type = Walkable
	}()

	neighbors := orthogonalNeighbors
	if allowDiagonal {
		neighbors = allNeighbors
	}
	h = h.forMoves(allowDiagonal)

	// Each cell holds at most one node across the open and closed sets;
	// slot maps a cell to that node's arena index.
	rows := p.grid.height
	slot := make([]int, p.grid.width*rows)
	for i := range slot {
		slot[i] = -1
	}
	state := make([]nodeState, len(slot))

	h0 := h.Estimate(start, goal)
	arena := make([]searchNode, 0, 64)
	arena = append(arena, searchNode{pos: start, parent: -1, h: h0, f: h0})
	open := []int{0}
	slot[start.Col*rows+start.Row] = 0
	state[start.Col*rows+start.Row] = inOpen

	for len(open) > 0 {
		// Linear scan; the first entry with the lowest f wins ties
		best := 0
		for i := 1; i < len(open); i++ {
			if arena[open[i]].f < arena[open[best]].f {
				best = i
			}
		}
		idx := open[best]
		open = append(open[:best], open[best+1:]...)
		current := arena[idx]
		state[current.pos.Col*rows+current.pos.Row] = inClosed
		p.Expanded++

		if current.pos == goal {
			return reconstructPath(arena, idx), true
		}

		for _, n := range neighbors {
			pos := Position{Col: current.pos.Col + n.dc, Row: current.pos.Row + n.dr}
			if !p.grid.InBounds(pos.Col, pos.Row) {
				continue
			}
			if !p.grid.cells[pos.Col][pos.Row].Walkable {
				continue
			}

			g := current.g + n.cost
			hv := h.Estimate(pos, goal)
			f := float64(g) + hv

			key := pos.Col*rows + pos.Row
			if prev := slot[key]; prev >= 0 {
				if arena[prev].f <= f {
					continue
				}
				if state[key] == inOpen {
					open = without(open, prev)
				}
			}

			arena = append(arena, searchNode{pos: pos, parent: idx, g: g, h: hv, f: f})
			slot[key] = len(arena) - 1
			state[key] = inOpen
			open = append(open, len(arena)-1)
		}
	}

	return nil, false
}

type nodeState uint8

const (
	unvisited nodeState = iota
	inOpen
	inClosed
)

// without removes one arena index from the open list, keeping order
func without(open []int, idx int) []int {
	for i, v := range open {
		if v == idx {
			return append(open[:i], open[i+1:]...)
		}
	}
	return open
}

func reconstructPath(arena []searchNode, idx int) []Position {
	path := make([]Position, 0, 16)
	for i := idx; i >= 0; i = arena[i].parent {
		path = append(path, arena[i].pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
