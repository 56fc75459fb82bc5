package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// assertConnected fails when consecutive path cells are not neighbours
func assertConnected(t *testing.T, path []Position, allowDiagonal bool) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		dc := abs(path[i].Col - path[i-1].Col)
		dr := abs(path[i].Row - path[i-1].Row)
		if dc > 1 || dr > 1 || (dc == 0 && dr == 0) {
			t.Fatalf("Path step %d: %v -> %v is not a single move", i, path[i-1], path[i])
		}
		if !allowDiagonal && dc == 1 && dr == 1 {
			t.Fatalf("Path step %d: %v -> %v is diagonal", i, path[i-1], path[i])
		}
	}
}

func TestParseHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		expected Heuristic
	}{
		{"", Manhattan},
		{"manhattan", Manhattan},
		{"Diagonal", Diagonal},
		{" euclidean ", Euclidean},
		{"euclidean-raw", EuclideanRaw},
	}

	for _, test := range tests {
		got, err := ParseHeuristic(test.name)
		if err != nil {
			t.Errorf("ParseHeuristic(%q): unexpected error %v", test.name, err)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseHeuristic(%q): expected %s, got %s", test.name, test.expected, got)
		}
	}

	if _, err := ParseHeuristic("dijkstra"); !errors.Is(err, ErrUnknownHeuristic) {
		t.Errorf("Expected ErrUnknownHeuristic, got %v", err)
	}
}

func TestHeuristicEstimate(t *testing.T) {
	from, to := Position{0, 0}, Position{3, 4}
	tests := []struct {
		h        Heuristic
		expected float64
	}{
		{Manhattan, 70},
		{Diagonal, 3*DiagonalCost + 1*OrthogonalCost},
		{Euclidean, 50},
		{EuclideanRaw, 5},
	}

	for _, test := range tests {
		if got := test.h.Estimate(from, to); got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.h, test.expected, got)
		}
	}
}

func TestFindPath_OpenGridDiagonal(t *testing.T) {
	g := NewGridMap(5, 5)
	pf := NewPathfinder(g)

	path, ok := pf.FindPath(Position{0, 0}, Position{4, 4}, Diagonal, true)
	if !ok {
		t.Fatal("Expected a path across an open grid")
	}
	if len(path) != 5 {
		t.Errorf("Expected 5 cells, got %d: %v", len(path), path)
	}
	if cost := PathCost(path); cost != 4*DiagonalCost {
		t.Errorf("Expected cost %d, got %d", 4*DiagonalCost, cost)
	}
	if path[0] != (Position{0, 0}) || path[len(path)-1] != (Position{4, 4}) {
		t.Errorf("Expected path from start to goal, got %v", path)
	}
	assertConnected(t, path, true)
}

func TestFindPath_DetourOrthogonal(t *testing.T) {
	g := NewGridMap(5, 5)
	g.SetWalkable(2, 2, false)
	pf := NewPathfinder(g)

	path, ok := pf.FindPath(Position{0, 2}, Position{4, 2}, Manhattan, false)
	if !ok {
		t.Fatal("Expected a detour around the blocked cell")
	}
	if len(path) != 7 {
		t.Errorf("Expected a 7-cell detour, got %d: %v", len(path), path)
	}
	for _, p := range path {
		if p == (Position{2, 2}) {
			t.Fatal("Path crosses the blocked cell")
		}
	}
	assertConnected(t, path, false)
}

func TestFindPath_AllHeuristicsAgreeOnCost(t *testing.T) {
	g := NewGridMap(8, 8)
	for row := 0; row < 6; row++ {
		g.SetWalkable(4, row, false)
	}

	for _, h := range []Heuristic{Manhattan, Diagonal, Euclidean, EuclideanRaw} {
		t.Run(string(h), func(t *testing.T) {
			path, ok := NewPathfinder(g).FindPath(Position{1, 1}, Position{6, 1}, h, false)
			if !ok {
				t.Fatal("Expected a path around the wall")
			}
			assertConnected(t, path, false)
			if cost := PathCost(path); cost != 150 {
				t.Errorf("Expected optimal cost 150, got %d", cost)
			}
		})
	}
}

// shortestCost runs a plain Dijkstra over the grid and returns the optimal
// 10/14 cost, or -1 when goal is unreachable
func shortestCost(g *GridMap, start, goal Position, allowDiagonal bool) int {
	neighbors := orthogonalNeighbors
	if allowDiagonal {
		neighbors = allNeighbors
	}
	dist := map[Position]int{start: 0}
	done := map[Position]bool{}
	for {
		cur, best := Position{}, -1
		for pos, d := range dist {
			if !done[pos] && (best < 0 || d < best) {
				cur, best = pos, d
			}
		}
		if best < 0 {
			return -1
		}
		if cur == goal {
			return best
		}
		done[cur] = true
		for _, n := range neighbors {
			next := Position{Col: cur.Col + n.dc, Row: cur.Row + n.dr}
			if !g.InBounds(next.Col, next.Row) || !g.Cell(next.Col, next.Row).Walkable {
				continue
			}
			if d, ok := dist[next]; !ok || best+n.cost < d {
				dist[next] = best + n.cost
			}
		}
	}
}

func TestFindPath_MatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, allowDiagonal := range []bool{true, false} {
		for _, h := range []Heuristic{Manhattan, Diagonal} {
			t.Run(fmt.Sprintf("%s/diagonal=%v", h, allowDiagonal), func(t *testing.T) {
				for trial := 0; trial < 200; trial++ {
					g := NewGridMap(10, 10)
					for col := 0; col < 10; col++ {
						for row := 0; row < 10; row++ {
							if rng.Intn(4) == 0 {
								g.SetWalkable(col, row, false)
							}
						}
					}
					start := Position{rng.Intn(10), rng.Intn(10)}
					goal := Position{rng.Intn(10), rng.Intn(10)}
					if !g.Cell(start.Col, start.Row).Walkable || !g.Cell(goal.Col, goal.Row).Walkable {
						continue
					}

					want := shortestCost(g, start, goal, allowDiagonal)
					path, ok := NewPathfinder(g).FindPath(start, goal, h, allowDiagonal)
					if want < 0 {
						if ok {
							t.Fatalf("%v->%v: expected unreachable, got %v", start, goal, path)
						}
						continue
					}
					if !ok {
						t.Fatalf("%v->%v: expected a path of cost %d", start, goal, want)
					}
					assertConnected(t, path, allowDiagonal)
					if cost := PathCost(path); cost != want {
						t.Fatalf("%v->%v: cost %d, want %d (%v)", start, goal, cost, want, path)
					}
				}
			})
		}
	}
}

func TestFindPath_ManhattanWithDiagonalsUsesOctile(t *testing.T) {
	if got := Manhattan.forMoves(true); got != Diagonal {
		t.Errorf("Expected manhattan to switch to diagonal with diagonal moves, got %s", got)
	}
	if got := Manhattan.forMoves(false); got != Manhattan {
		t.Errorf("Expected manhattan to stay with orthogonal moves, got %s", got)
	}
	if got := Euclidean.forMoves(true); got != Euclidean {
		t.Errorf("Expected euclidean to be untouched, got %s", got)
	}
}

func TestFindPath_WideExploration(t *testing.T) {
	const n = 256
	g := NewGridMap(n, n)
	// A full-height wall with its only gap at the far end
	for row := 0; row < n-1; row++ {
		g.SetWalkable(n/2, row, false)
	}

	began := time.Now()
	path, ok := NewPathfinder(g).FindPath(Position{0, 0}, Position{n - 1, 0}, Manhattan, true)
	if !ok {
		t.Fatal("Expected a path through the gap")
	}
	assertConnected(t, path, true)
	// Octile legs (0,0)->(128,255) and (128,255)->(255,0)
	want := (128*DiagonalCost + 127*OrthogonalCost) + (127*DiagonalCost + 128*OrthogonalCost)
	if cost := PathCost(path); cost != want {
		t.Errorf("Expected cost %d, got %d", want, cost)
	}
	if elapsed := time.Since(began); elapsed > 5*time.Second {
		t.Errorf("Search took %v", elapsed)
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	g := NewGridMap(3, 3)
	path, ok := NewPathfinder(g).FindPath(Position{1, 1}, Position{1, 1}, Manhattan, true)
	if !ok {
		t.Fatal("Expected start == goal to succeed")
	}
	if len(path) != 1 || path[0] != (Position{1, 1}) {
		t.Errorf("Expected single-cell path, got %v", path)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	g := NewGridMap(5, 5)
	for row := 0; row < 5; row++ {
		g.SetWalkable(2, row, false)
	}

	path, ok := NewPathfinder(g).FindPath(Position{0, 0}, Position{4, 4}, Diagonal, true)
	if ok || path != nil {
		t.Errorf("Expected no path through a solid wall, got %v", path)
	}
}

func TestFindPath_UnwalkableEndpoints(t *testing.T) {
	g := NewGridMap(5, 5)
	g.SetWalkable(4, 4, false)
	g.SetWalkable(0, 0, false)
	pf := NewPathfinder(g)

	if _, ok := pf.FindPath(Position{1, 1}, Position{4, 4}, Manhattan, true); ok {
		t.Error("Expected unwalkable goal to fail")
	}
	if pf.Expanded != 0 {
		t.Errorf("Expected no expansion for an unwalkable goal, got %d", pf.Expanded)
	}
	if _, ok := pf.FindPath(Position{0, 0}, Position{3, 3}, Manhattan, true); ok {
		t.Error("Expected unwalkable start to fail")
	}
}

func TestFindPath_ClampsEndpoints(t *testing.T) {
	g := NewGridMap(4, 4)
	path, ok := NewPathfinder(g).FindPath(Position{-5, -5}, Position{20, 20}, Diagonal, true)
	if !ok {
		t.Fatal("Expected clamped endpoints to be searchable")
	}
	if path[0] != (Position{0, 0}) || path[len(path)-1] != (Position{3, 3}) {
		t.Errorf("Expected path between clamped corners, got %v", path)
	}
}

func TestFindPath_RestoresMarkers(t *testing.T) {
	g := NewGridMap(5, 5)
	for row := 0; row < 5; row++ {
		g.SetWalkable(2, row, false)
	}
	pf := NewPathfinder(g)

	pf.FindPath(Position{0, 0}, Position{1, 4}, Manhattan, false) // found
	pf.FindPath(Position{0, 0}, Position{4, 4}, Manhattan, false) // not found

	for col := 0; col < 5; col++ {
		for row := 0; row < 5; row++ {
			typ := g.Cell(col, row).Type
			if typ == Start || typ == Goal {
				t.Errorf("Expected marker at (%d,%d) to be restored, got %s", col, row, typ)
			}
		}
	}
}

func TestFindPath_DiagonalPassesBlockedCorners(t *testing.T) {
	g := NewGridMap(3, 3)
	g.SetWalkable(1, 0, false)
	g.SetWalkable(0, 1, false)

	// Diagonal moves ignore the orthogonal neighbours
	path, ok := NewPathfinder(g).FindPath(Position{0, 0}, Position{1, 1}, Diagonal, true)
	if !ok || len(path) != 2 {
		t.Errorf("Expected direct diagonal step, got %v ok=%v", path, ok)
	}

	if _, ok := NewPathfinder(g).FindPath(Position{0, 0}, Position{1, 1}, Manhattan, false); ok {
		t.Error("Expected sealed corner to be unreachable without diagonals")
	}
}
