package engine

import (
	"fmt"
)

// Layout legend characters
const (
	LegendFloor   = '.'
	LegendWall    = '#'
	LegendWater   = '~'
	LegendFoliage = ':'
	LegendSpawn   = '@'
)

// ValidateGridConfig validates a grid configuration for correctness
func ValidateGridConfig(config *GridConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate dimensions
	if config.TileSize < MinTileSize || config.TileSize > MaxTileSize {
		return fmt.Errorf("config validation: tile_size must be between %d and %d, got %d", MinTileSize, MaxTileSize, config.TileSize)
	}
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}
	if config.SightRadius < 0 || config.SightRadius > MaxSightRadius {
		return fmt.Errorf("config validation: sight_radius must be between 0 and %d, got %d", MaxSightRadius, config.SightRadius)
	}
	if config.Speed < 0 {
		return fmt.Errorf("config validation: speed must not be negative, got %g", config.Speed)
	}

	if _, err := ParseHeuristic(config.Heuristic); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Layout is optional; when present it must cover the grid exactly
	if len(config.Layout) == 0 {
		return nil
	}
	if len(config.Layout) != config.Height {
		return fmt.Errorf("config validation: layout must have %d rows to match height, got %d",
			config.Height, len(config.Layout))
	}

	spawns := 0
	for i, row := range config.Layout {
		if len(row) != config.Width {
			return fmt.Errorf("config validation: row %d must have %d characters to match width, got %d",
				i+1, config.Width, len(row))
		}
		for j, char := range row {
			switch char {
			case LegendFloor, LegendWall, LegendWater, LegendFoliage:
			case LegendSpawn:
				spawns++
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}
	if spawns > 1 {
		return fmt.Errorf("config validation: layout may contain at most one spawn (@) cell, got %d", spawns)
	}

	return nil
}

// ApplyLayout writes a legend layout onto the grid and returns the spawn
// cell, or the origin when the layout has none. Rows beyond the grid and
// unknown characters are ignored.
func ApplyLayout(grid *GridMap, layout []string) Position {
	var spawn Position
	for row, line := range layout {
		for col := 0; col < len(line); col++ {
			if !grid.InBounds(col, row) {
				continue
			}
			if line[col] == LegendSpawn {
				spawn = Position{Col: col, Row: row}
			}
			walkable, block := legendTerrain(line[col])
			grid.SetWalkable(col, row, walkable)
			grid.SetBlockSight(col, row, block)
		}
	}
	return spawn
}

// LayoutTerrain returns the walkable and sight-blocking attributes the
// layout gives a cell. Cells outside the layout are floor.
func LayoutTerrain(layout []string, col, row int) (walkable, blockSight bool) {
	if row < 0 || row >= len(layout) || col < 0 || col >= len(layout[row]) {
		return true, false
	}
	return legendTerrain(layout[row][col])
}

func legendTerrain(char byte) (walkable, blockSight bool) {
	switch char {
	case LegendWall:
		return false, true
	case LegendWater:
		return false, false
	case LegendFoliage:
		return true, true
	default:
		return true, false
	}
}

// DefaultGridConfig returns the built-in configuration used when no
// config file is available
func DefaultGridConfig() *GridConfig {
	return &GridConfig{
		Name:          "minimal",
		Description:   "Minimal open room with a single pillar",
		TileSize:      32,
		SightRadius:   4,
		Width:         8,
		Height:        8,
		Speed:         4,
		Heuristic:     string(Manhattan),
		AllowDiagonal: true,
		Layout: []string{
			"........",
			"........",
			"........",
			"...##...",
			"...##...",
			"........",
			".@......",
			"........",
		},
	}
}
