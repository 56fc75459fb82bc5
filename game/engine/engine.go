package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidUnit = errors.New("invalid unit")

// ParseUnit resolves a unit name. An empty name selects Tiles.
func ParseUnit(name string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(name))); u {
	case "", "tile", Tiles:
		return Tiles, nil
	case "pixel", "px", Pixels:
		return Pixels, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, name)
	}
}

// Engine provides the main interface for pathfinding and visibility
type Engine interface {
	// Grid state
	Grid() *GridMap
	Snapshot() *GridSnapshot
	Config() *GridConfig
	Reset()

	// Anchor
	SetAnchor(x, y float64, unit Unit)
	Anchor() Position

	// Pathfinding
	FindPath(sx, sy, gx, gy float64, unit Unit, h Heuristic, allowDiagonal bool) ([]Position, bool)
	Path() []Position
	PathX() float64
	PathY() float64
	Advance() bool
	Retreat() bool
	Step(includeLast bool) StepResult

	// Visibility
	ComputeSight(x, y float64, unit Unit, radius int)
	UpdateSight()
	CheckTile(x, y float64, unit Unit, mode TileMode) bool
	ForEachInRadius(x, y float64, unit Unit, radius int, visit Visitor)
	ForEachSelfInRadius(radius int, visit Visitor)

	// Obstacles
	SetObstacles(positions []PixelPos, walkable, blockSight *bool) int
	Block(positions []PixelPos, blockSight bool) int
	Unblock(positions []PixelPos, clearSight bool) int
	Restore(positions []PixelPos) int
}

// GridEngine implements the Engine interface
type GridEngine struct {
	config      *GridConfig
	grid        *GridMap
	pathfinder  *Pathfinder
	stepper     *Stepper
	anchor      Position
	tileSize    int
	sightRadius int
}

// NewGridEngine creates an engine over an empty width x height grid
func NewGridEngine(tileSize, sightRadius, width, height int) (*GridEngine, error) {
	config := &GridConfig{
		Name:        "inline",
		Description: "engine created without a layout",
		TileSize:    tileSize,
		SightRadius: sightRadius,
		Width:       width,
		Height:      height,
		Speed:       defaultSpeed(tileSize),
	}
	return NewEngine(config)
}

// NewEngine creates an engine with the provided configuration
func NewEngine(config *GridConfig) (*GridEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := ValidateGridConfig(config); err != nil {
		return nil, err
	}

	e := &GridEngine{config: config}
	e.init()
	return e, nil
}

func (e *GridEngine) init() {
	c := e.config
	e.tileSize = c.TileSize
	e.sightRadius = c.SightRadius
	e.grid = NewGridMap(c.Width, c.Height)
	e.pathfinder = NewPathfinder(e.grid)
	speed := c.Speed
	if speed <= 0 {
		speed = defaultSpeed(c.TileSize)
	}
	e.stepper = NewStepper(speed, c.TileSize)
	e.anchor = ApplyLayout(e.grid, c.Layout)
}

// Grid returns the underlying grid
func (e *GridEngine) Grid() *GridMap {
	return e.grid
}

// Config returns the engine configuration
func (e *GridEngine) Config() *GridConfig {
	return e.config
}

// Reset rebuilds the grid from configuration, dropping obstacles added
// at runtime, explored memory and the active path
func (e *GridEngine) Reset() {
	e.init()
}

// Snapshot copies the observable state
func (e *GridEngine) Snapshot() *GridSnapshot {
	visible, explored := e.grid.counts()
	var path []Position
	if p := e.stepper.Path(); len(p) > 0 {
		path = append([]Position(nil), p...)
	}
	return &GridSnapshot{
		Width:       e.grid.Width(),
		Height:      e.grid.Height(),
		TileSize:    e.tileSize,
		SightRadius: e.sightRadius,
		Anchor:      e.anchor,
		Cells:       e.grid.copyCells(),
		Path:        path,
		PathIndex:   e.stepper.Index(),
		Visible:     visible,
		Explored:    explored,
	}
}

// TileSize returns the tile edge length in pixels
func (e *GridEngine) TileSize() int {
	return e.tileSize
}

// SightRadius returns the configured sight radius in tiles
func (e *GridEngine) SightRadius() int {
	return e.sightRadius
}

// Locate converts host coordinates to a clamped cell
func (e *GridEngine) Locate(x, y float64, unit Unit) Position {
	return e.grid.Clamp(Position{
		Col: ToCell(x, unit, e.tileSize),
		Row: ToCell(y, unit, e.tileSize),
	})
}

// SetAnchor moves the engine's own point of view
func (e *GridEngine) SetAnchor(x, y float64, unit Unit) {
	e.anchor = e.Locate(x, y, unit)
}

// Anchor returns the engine's own point of view
func (e *GridEngine) Anchor() Position {
	return e.anchor
}

// FindPath searches for a route and, on success, loads it into the
// movement stepper, replacing any active path
func (e *GridEngine) FindPath(sx, sy, gx, gy float64, unit Unit, h Heuristic, allowDiagonal bool) ([]Position, bool) {
	start := e.Locate(sx, sy, unit)
	goal := e.Locate(gx, gy, unit)

	path, ok := e.pathfinder.FindPath(start, goal, h, allowDiagonal)
	if !ok {
		return nil, false
	}
	e.stepper.SetPath(path)
	return path, true
}

// Expanded returns the number of nodes expanded by the latest search
func (e *GridEngine) Expanded() int {
	return e.pathfinder.Expanded
}

// Path returns the active path
func (e *GridEngine) Path() []Position {
	return e.stepper.Path()
}

// PathIndex returns the cursor into the active path
func (e *GridEngine) PathIndex() int {
	return e.stepper.Index()
}

// PathX returns the pixel x of the cell under the path cursor, or -1
// without an active path
func (e *GridEngine) PathX() float64 {
	p, ok := e.stepper.Current()
	if !ok {
		return -1
	}
	return ToPixels(p.Col, e.tileSize)
}

// PathY returns the pixel y of the cell under the path cursor, or -1
// without an active path
func (e *GridEngine) PathY() float64 {
	p, ok := e.stepper.Current()
	if !ok {
		return -1
	}
	return ToPixels(p.Row, e.tileSize)
}

// Advance moves the path cursor forward
func (e *GridEngine) Advance() bool {
	return e.stepper.Advance()
}

// Retreat moves the path cursor back
func (e *GridEngine) Retreat() bool {
	return e.stepper.Retreat()
}

// Step advances movement along the active path by one tick
func (e *GridEngine) Step(includeLast bool) StepResult {
	return e.stepper.Step(includeLast)
}

// ComputeSight recomputes visibility from an arbitrary origin
func (e *GridEngine) ComputeSight(x, y float64, unit Unit, radius int) {
	e.grid.ComputeSight(e.Locate(x, y, unit), radius)
}

// UpdateSight recomputes visibility from the anchor with the configured radius
func (e *GridEngine) UpdateSight() {
	e.grid.ComputeSight(e.anchor, e.sightRadius)
}

// CheckTile tests one cell against a visibility mode
func (e *GridEngine) CheckTile(x, y float64, unit Unit, mode TileMode) bool {
	return e.grid.CheckTile(e.Locate(x, y, unit), mode)
}

// ForEachInRadius visits the clamped square around a point
func (e *GridEngine) ForEachInRadius(x, y float64, unit Unit, radius int, visit Visitor) {
	e.grid.ForEachInRadius(e.Locate(x, y, unit), radius, visit)
}

// ForEachSelfInRadius visits the clamped square around the anchor,
// skipping cells that block sight
func (e *GridEngine) ForEachSelfInRadius(radius int, visit Visitor) {
	e.grid.forEachClearInRadius(e.anchor, radius, visit)
}

// SetObstacles applies walkable and sight attributes to the cells under
// the given pixel positions. A nil attribute is left untouched.
func (e *GridEngine) SetObstacles(positions []PixelPos, walkable, blockSight *bool) int {
	return e.grid.SetCells(positions, e.tileSize, walkable, blockSight)
}

// Block makes the cells under positions unwalkable, optionally also
// blocking sight
func (e *GridEngine) Block(positions []PixelPos, blockSight bool) int {
	walkable := false
	if blockSight {
		return e.SetObstacles(positions, &walkable, &blockSight)
	}
	return e.SetObstacles(positions, &walkable, nil)
}

// Unblock makes the cells under positions walkable, optionally also
// clearing their sight block
func (e *GridEngine) Unblock(positions []PixelPos, clearSight bool) int {
	walkable := true
	if clearSight {
		block := false
		return e.SetObstacles(positions, &walkable, &block)
	}
	return e.SetObstacles(positions, &walkable, nil)
}

// Restore returns the cells under positions to the terrain their layout
// gives them, undoing any obstacle attributes
func (e *GridEngine) Restore(positions []PixelPos) int {
	changed := 0
	for _, pos := range positions {
		col := Grid(pos.X, e.tileSize)
		row := Grid(pos.Y, e.tileSize)
		if !e.grid.InBounds(col, row) {
			continue
		}
		walkable, block := LayoutTerrain(e.config.Layout, col, row)
		e.grid.SetWalkable(col, row, walkable)
		e.grid.SetBlockSight(col, row, block)
		changed++
	}
	return changed
}

func defaultSpeed(tileSize int) float64 {
	if tileSize < 8 {
		return 1
	}
	return float64(tileSize) / 8
}
