package engine

import (
	"testing"
)

func TestNewGridMap(t *testing.T) {
	g := NewGridMap(4, 3)
	if g.Width() != 4 || g.Height() != 3 {
		t.Fatalf("Expected 4x3 grid, got %dx%d", g.Width(), g.Height())
	}

	for col := 0; col < 4; col++ {
		for row := 0; row < 3; row++ {
			c := g.Cell(col, row)
			if !c.Walkable || c.Type != Walkable {
				t.Errorf("Expected (%d,%d) to start walkable, got %+v", col, row, c)
			}
			if c.BlockSight || c.Sight || c.AlreadySeen {
				t.Errorf("Expected (%d,%d) to start clear and unseen, got %+v", col, row, c)
			}
		}
	}
}

func TestNewGridMap_MinimumSize(t *testing.T) {
	g := NewGridMap(0, -3)
	if g.Width() != MinGridSize || g.Height() != MinGridSize {
		t.Errorf("Expected degenerate size to floor at %d, got %dx%d", MinGridSize, g.Width(), g.Height())
	}
}

func TestGridMap_Clamp(t *testing.T) {
	g := NewGridMap(5, 5)
	tests := []struct {
		in, want Position
	}{
		{Position{2, 3}, Position{2, 3}},
		{Position{-1, -7}, Position{0, 0}},
		{Position{9, 2}, Position{4, 2}},
		{Position{3, 100}, Position{3, 4}},
	}

	for _, test := range tests {
		if got := g.Clamp(test.in); got != test.want {
			t.Errorf("Clamp(%v): expected %v, got %v", test.in, test.want, got)
		}
	}
}

func TestGridMap_CellClampsOutOfRange(t *testing.T) {
	g := NewGridMap(3, 3)
	g.SetWalkable(2, 2, false)

	if g.Cell(50, 50).Walkable {
		t.Error("Expected out-of-range read to clamp onto the blocked corner")
	}
	if g.InBounds(3, 0) || g.InBounds(-1, 0) {
		t.Error("Expected InBounds to reject coordinates outside the grid")
	}
}

func TestGridMap_SetCells(t *testing.T) {
	g := NewGridMap(5, 5)
	walkable := false
	block := true

	changed := g.SetCells([]PixelPos{
		{X: 64, Y: 32},   // (2,1)
		{X: 95, Y: 0},    // rounds to (3,0)
		{X: 320, Y: 320}, // off the map
	}, 32, &walkable, &block)

	if changed != 2 {
		t.Errorf("Expected 2 cells changed, got %d", changed)
	}

	for _, p := range []Position{{2, 1}, {3, 0}} {
		c := g.Cell(p.Col, p.Row)
		if c.Walkable || !c.BlockSight || c.Type != Unwalkable {
			t.Errorf("Expected %v to be blocked, got %+v", p, c)
		}
	}
	if !g.Cell(4, 4).Walkable {
		t.Error("Expected off-map position to leave the border untouched")
	}
}

func TestGridMap_SetCellsNilLeavesAttribute(t *testing.T) {
	g := NewGridMap(3, 3)
	g.SetBlockSight(1, 1, true)

	walkable := false
	g.SetCells([]PixelPos{{X: 10, Y: 10}}, 10, &walkable, nil)

	c := g.Cell(1, 1)
	if c.Walkable {
		t.Error("Expected walkable to be updated")
	}
	if !c.BlockSight {
		t.Error("Expected nil blockSight to leave the flag untouched")
	}
}

func TestGridMap_ResetMarkers(t *testing.T) {
	g := NewGridMap(3, 3)
	g.cell(0, 0).Type = Start
	g.cell(2, 2).Type = Goal

	g.ResetMarkers()

	if g.Cell(0, 0).Type != Walkable || g.Cell(2, 2).Type != Walkable {
		t.Error("Expected markers to be cleared")
	}
}
