package mcp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
	"github.com/wricardo/gridsight/game/service"
)

// maxListed caps how many positions a text reply spells out
const maxListed = 40

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nGrid: %dx%d (tile %dpx)\nAnchor: (%d,%d)\nPath length: %d\nObstacles: %d\nCreated: %s\n",
		session.ID, session.ConfigName,
		session.Width, session.Height, session.TileSize,
		session.Anchor.Col, session.Anchor.Row,
		session.PathLength, session.Obstacles,
		session.CreatedAt.Format("2006-01-02 15:04:05"))
}

// cellChar maps a cell's movement and sight attributes onto the layout legend
func cellChar(c engine.Cell) byte {
	switch {
	case !c.Walkable && c.BlockSight:
		return '#'
	case !c.Walkable:
		return '~'
	case c.BlockSight:
		return ':'
	default:
		return '.'
	}
}

// formatGrid renders the terrain with the active path (*), the path cursor
// (o) and the anchor (@), followed by a visibility map
func formatGrid(grid *engine.GridSnapshot) string {
	if grid == nil || len(grid.Cells) == 0 {
		return "No grid available"
	}

	onPath := make(map[engine.Position]bool, len(grid.Path))
	for _, p := range grid.Path {
		onPath[p] = true
	}
	var cursor *engine.Position
	if grid.PathIndex >= 0 && grid.PathIndex < len(grid.Path) {
		cursor = &grid.Path[grid.PathIndex]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid %dx%d, tile %dpx, anchor (%d,%d), sight radius %d\n",
		grid.Width, grid.Height, grid.TileSize, grid.Anchor.Col, grid.Anchor.Row, grid.SightRadius)
	b.WriteString("Legend: . floor  # wall  ~ water  : foliage  @ anchor  * path  o cursor\n\n")

	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			pos := engine.Position{Col: col, Row: row}
			switch {
			case pos == grid.Anchor:
				b.WriteByte('@')
			case cursor != nil && pos == *cursor:
				b.WriteByte('o')
			case onPath[pos]:
				b.WriteByte('*')
			default:
				b.WriteByte(cellChar(grid.Cells[col][row]))
			}
		}
		b.WriteByte('\n')
	}

	if grid.Explored > 0 {
		fmt.Fprintf(&b, "\nVisibility (V visible, s seen before, blank unexplored): %d visible, %d explored\n\n",
			grid.Visible, grid.Explored)
		for row := 0; row < grid.Height; row++ {
			for col := 0; col < grid.Width; col++ {
				c := grid.Cells[col][row]
				switch {
				case c.Sight:
					b.WriteByte('V')
				case c.AlreadySeen:
					b.WriteByte('s')
				default:
					b.WriteByte(' ')
				}
			}
			b.WriteString("|\n")
		}
	}

	return b.String()
}

func formatPositions(positions []engine.Position) string {
	if len(positions) == 0 {
		return "none"
	}
	parts := make([]string, 0, min(len(positions), maxListed))
	for i, p := range positions {
		if i == maxListed {
			break
		}
		parts = append(parts, fmt.Sprintf("(%d,%d)", p.Col, p.Row))
	}
	out := strings.Join(parts, " ")
	if len(positions) > maxListed {
		out += fmt.Sprintf(" ... and %d more", len(positions)-maxListed)
	}
	return out
}

func formatPathResult(result *service.PathResult) string {
	if !result.Found {
		return fmt.Sprintf("No path found (expanded %d nodes, heuristic %s). The active path is unchanged.",
			result.Expanded, result.Heuristic)
	}
	return fmt.Sprintf("Path found: %d cells, cost %d, expanded %d nodes (heuristic %s, diagonal %v)\n%s",
		result.Length, result.Cost, result.Expanded, result.Heuristic, result.Diagonal,
		formatPositions(result.Path))
}

func formatStepInfo(info *service.StepInfo) string {
	if !info.Active {
		return "No active path"
	}
	line := fmt.Sprintf("Direction: %s  index %d/%d  cursor at pixel (%g,%g)",
		info.Direction, info.Index, info.Length-1, info.PathX, info.PathY)
	if info.Direction == engine.None && !info.Moved {
		line += "  (cursor did not move)"
	}
	return line
}

func formatSightResult(result *service.SightResult) string {
	return fmt.Sprintf("Sight from (%d,%d) radius %d: %d visible, %d newly revealed, %d explored\nVisible: %s\nRevealed: %s",
		result.Origin.Col, result.Origin.Row, result.Radius,
		len(result.Visible), len(result.Revealed), result.Explored,
		formatPositions(result.Visible), formatPositions(result.Revealed))
}

func formatObject(obj obstacles.Object) string {
	return fmt.Sprintf("- %s at (%g,%g) size %gx%g walkable=%s block_sight=%s\n",
		obj.ID, obj.X, obj.Y, obj.W, obj.H, formatFlag(obj.Walkable), formatFlag(obj.BlockSight))
}

// formatFlag renders an optional attribute; "-" means untouched
func formatFlag(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

func formatObstacleResult(verb string, result *service.ObstacleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d objects, %d cells changed, %d obstacles total\n",
		verb, len(result.Objects), result.CellsChanged, result.Total)
	for _, obj := range result.Objects {
		b.WriteString(formatObject(obj))
	}
	return b.String()
}
