package engine

import (
	"reflect"
	"testing"
)

func TestGrid(t *testing.T) {
	tests := []struct {
		pixel    float64
		tileSize int
		expected int
	}{
		{0, 32, 0},
		{32, 32, 1},
		{47, 32, 1},
		{48, 32, 2},
		{-10, 32, 0},
		{100, 0, 0},
	}

	for _, test := range tests {
		if got := Grid(test.pixel, test.tileSize); got != test.expected {
			t.Errorf("Grid(%v, %d): expected %d, got %d", test.pixel, test.tileSize, test.expected, got)
		}
	}
}

func TestSnap(t *testing.T) {
	if got := Snap(47, 32); got != 32 {
		t.Errorf("Expected 32, got %v", got)
	}
	if got := Snap(50, 32); got != 64 {
		t.Errorf("Expected 64, got %v", got)
	}
}

func TestToCell(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		unit     Unit
		expected int
	}{
		{"pixels floor", 63, Pixels, 1},
		{"pixels exact", 64, Pixels, 2},
		{"pixels negative", -1, Pixels, -1},
		{"tiles", 3, Tiles, 3},
		{"tiles fractional", 3.9, Tiles, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ToCell(test.v, test.unit, 32); got != test.expected {
				t.Errorf("Expected %d, got %d", test.expected, got)
			}
		})
	}

	if ToPixels(3, 32) != 96 {
		t.Errorf("Expected ToPixels(3, 32) to be 96")
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		expected       []Position
	}{
		{"single point", 2, 2, 2, 2, []Position{{2, 2}}},
		{"horizontal", 0, 0, 3, 0, []Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"vertical up", 1, 3, 1, 1, []Position{{1, 3}, {1, 2}, {1, 1}}},
		{"diagonal", 0, 0, 2, 2, []Position{{0, 0}, {1, 1}, {2, 2}}},
		{"shallow", 0, 0, 3, 1, []Position{{0, 0}, {1, 0}, {2, 1}, {3, 1}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Line(test.x1, test.y1, test.x2, test.y2)
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestLine_Endpoints(t *testing.T) {
	cases := [][4]int{{0, 0, 7, 3}, {5, 5, -2, 1}, {3, 9, 3, 0}, {-4, 2, 6, -8}}

	for _, c := range cases {
		points := Line(c[0], c[1], c[2], c[3])
		first, last := points[0], points[len(points)-1]
		if first != (Position{c[0], c[1]}) || last != (Position{c[2], c[3]}) {
			t.Errorf("Line%v: expected endpoints to be included, got %v..%v", c, first, last)
		}
		for i := 1; i < len(points); i++ {
			if abs(points[i].Col-points[i-1].Col) > 1 || abs(points[i].Row-points[i-1].Row) > 1 {
				t.Errorf("Line%v: gap between %v and %v", c, points[i-1], points[i])
			}
		}
	}
}
