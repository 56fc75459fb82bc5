// Command validate provides a small CLI that validates grid configuration
// files (JSON or YAML) in a config directory. It checks:
//   - decoding and the engine's own config validation
//   - that every obstacle layer loads and lies inside the grid
//   - that the spawn cell is not covered by a blocking obstacle
//   - connectivity: how many walkable cells the spawn can reach
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridsight/game/config"
	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Info lines are reported either way.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	cfg, err := config.Decode(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid %s: %v", strings.TrimPrefix(filepath.Ext(filePath), "."), err)
		return result
	}

	if err := engine.ValidateGridConfig(cfg); err != nil {
		result.fail("%v", err)
		return result
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		result.fail("Failed to build grid: %v", err)
		return result
	}
	spawn := eng.Anchor()
	pxWidth := float64(cfg.Width * cfg.TileSize)
	pxHeight := float64(cfg.Height * cfg.TileSize)

	objects := 0
	for _, layer := range cfg.ObstacleLayers {
		path := layer
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(filePath), layer)
		}
		layerObjects, err := config.ReadLayer(path)
		if err != nil {
			result.fail("Obstacle layer %s: %v", layer, err)
			continue
		}

		for _, obj := range layerObjects {
			objects++
			if obj.X < 0 || obj.Y < 0 || obj.X+obj.W > pxWidth || obj.Y+obj.H > pxHeight {
				result.fail("Obstacle %s at (%g,%g) size %gx%g extends outside the %gx%g pixel grid",
					obj.ID, obj.X, obj.Y, obj.W, obj.H, pxWidth, pxHeight)
			}
			cells := obstacles.CoveredCells(obj.X, obj.Y, obj.W, obj.H, cfg.TileSize, cfg.Width, cfg.Height)
			if obj.Walkable != nil && !*obj.Walkable && coversCell(cells, spawn, cfg.TileSize) {
				result.fail("Obstacle %s blocks the spawn cell (%d,%d)", obj.ID, spawn.Col, spawn.Row)
			}
			eng.SetObstacles(cells, obj.Walkable, obj.BlockSight)
		}
	}

	if !result.Valid {
		return result
	}

	reachable, walkable := connectivity(eng.Grid(), spawn, cfg.AllowDiagonal)
	if reachable < walkable {
		result.info("! Connectivity: %d/%d walkable cells reachable from spawn", reachable, walkable)
	} else {
		result.info("✓ Connectivity: all %d walkable cells reachable from spawn", walkable)
	}

	heuristic, _ := engine.ParseHeuristic(cfg.Heuristic)
	result.info("✓ Name: %s", cfg.Name)
	result.info("✓ Grid: %dx%d, tile %dpx", cfg.Width, cfg.Height, cfg.TileSize)
	result.info("✓ Spawn: (%d,%d)", spawn.Col, spawn.Row)
	result.info("✓ Sight radius: %d", cfg.SightRadius)
	result.info("✓ Search: %s, diagonal %v", heuristic, cfg.AllowDiagonal)
	result.info("✓ Layer obstacles: %d in %d layers", objects, len(cfg.ObstacleLayers))

	return result
}

func coversCell(cells []engine.PixelPos, pos engine.Position, tileSize int) bool {
	for _, c := range cells {
		if engine.Grid(c.X, tileSize) == pos.Col && engine.Grid(c.Y, tileSize) == pos.Row {
			return true
		}
	}
	return false
}

// connectivity flood fills walkable cells from start using the same
// neighbourhood as the pathfinder and returns reachable and total walkable
// counts
func connectivity(grid *engine.GridMap, start engine.Position, allowDiagonal bool) (reachable, walkable int) {
	for col := 0; col < grid.Width(); col++ {
		for row := 0; row < grid.Height(); row++ {
			if grid.Cell(col, row).Walkable {
				walkable++
			}
		}
	}
	if !grid.Cell(start.Col, start.Row).Walkable {
		return 0, walkable
	}

	directions := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	if allowDiagonal {
		directions = append(directions, [2]int{-1, -1}, [2]int{1, -1}, [2]int{-1, 1}, [2]int{1, 1})
	}

	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			next := engine.Position{Col: current.Col + d[0], Row: current.Row + d[1]}
			if visited[next] || !grid.InBounds(next.Col, next.Row) || !grid.Cell(next.Col, next.Row).Walkable {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	return len(visited), walkable
}

// configFiles lists the grid configuration files in dir
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report validates every file and prints a concise report. It returns
// false if any file is invalid.
func report(w io.Writer, files []string) bool {
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

// main validates the given files, or every config in --config-dir, and
// exits with non-zero status if any are invalid
func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate grid configuration files",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing grid configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				if files, err = configFiles(cmd.String("config-dir")); err != nil {
					return fmt.Errorf("finding config files: %w", err)
				}
			}
			if !report(os.Stdout, files) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
