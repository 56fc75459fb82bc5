// Command analyze prints quick, human-readable heuristics about the grid
// configurations in a config directory. For each config it builds the grid
// with its obstacle layers, runs A* from the spawn to every walkable cell,
// and runs one sight pass from the spawn.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridsight/game/config"
	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
)

// maxListed caps how many unreachable cells are printed per config
const maxListed = 5

// Analysis summarizes one configuration
type Analysis struct {
	ID          string
	Name        string
	Width       int
	Height      int
	Spawn       engine.Position
	Obstacles   int
	Walkable    int
	Reachable   int
	Unreachable []engine.Position
	LongestCost int
	Visible     int
	SightRadius int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Report reachability and sight coverage for grid configurations",
		ArgsUsage: "[config-id ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing grid configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// run analyzes the named configs, or every config in dir when ids is empty
func run(w io.Writer, dir string, ids []string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			ids = append(ids, info.ConfigID)
		}
	}

	for _, id := range ids {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
		a, err := analyzeConfig(manager, id)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printAnalysis(w, a)
	}
	return nil
}

// analyzeConfig loads one configuration with its layers and measures it
func analyzeConfig(manager *config.Manager, id string) (*Analysis, error) {
	cfg, err := manager.LoadConfig(id)
	if err != nil {
		return nil, err
	}
	layers, err := manager.LoadLayers(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading obstacle layers: %w", err)
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	for _, obj := range layers {
		eng.SetObstacles(obstacles.CoveredCells(obj.X, obj.Y, obj.W, obj.H, cfg.TileSize, cfg.Width, cfg.Height), obj.Walkable, obj.BlockSight)
	}

	h, err := engine.ParseHeuristic(cfg.Heuristic)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		ID:          id,
		Name:        cfg.Name,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Spawn:       eng.Anchor(),
		Obstacles:   len(layers),
		SightRadius: eng.SightRadius(),
	}

	grid := eng.Grid()
	pathfinder := engine.NewPathfinder(grid)
	spawnOpen := grid.Cell(a.Spawn.Col, a.Spawn.Row).Walkable

	for row := 0; row < cfg.Height; row++ {
		for col := 0; col < cfg.Width; col++ {
			if !grid.Cell(col, row).Walkable {
				continue
			}
			a.Walkable++
			goal := engine.Position{Col: col, Row: row}
			if !spawnOpen {
				a.Unreachable = append(a.Unreachable, goal)
				continue
			}
			path, ok := pathfinder.FindPath(a.Spawn, goal, h, cfg.AllowDiagonal)
			if !ok {
				a.Unreachable = append(a.Unreachable, goal)
				continue
			}
			a.Reachable++
			if cost := engine.PathCost(path); cost > a.LongestCost {
				a.LongestCost = cost
			}
		}
	}

	eng.UpdateSight()
	a.Visible = eng.Snapshot().Visible

	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Spawn: (%d, %d)\n", a.Spawn.Col, a.Spawn.Row)
	fmt.Fprintf(w, "Layer Obstacles: %d\n", a.Obstacles)
	fmt.Fprintf(w, "Walkable Cells: %d\n", a.Walkable)

	if len(a.Unreachable) > 0 {
		fmt.Fprintf(w, "WARNING: %d walkable cells are unreachable from the spawn\n", len(a.Unreachable))
		for i, p := range a.Unreachable {
			if i == maxListed {
				fmt.Fprintf(w, "   ... and %d more\n", len(a.Unreachable)-maxListed)
				break
			}
			fmt.Fprintf(w, "   Unreachable: (%d, %d)\n", p.Col, p.Row)
		}
	} else {
		fmt.Fprintf(w, "OK: all %d walkable cells are reachable from the spawn\n", a.Reachable)
	}
	fmt.Fprintf(w, "Longest Route Cost: %d\n", a.LongestCost)

	coverage := 0.0
	if total := a.Width * a.Height; total > 0 {
		coverage = float64(a.Visible) * 100 / float64(total)
	}
	fmt.Fprintf(w, "Visible From Spawn: %d cells (%.1f%% of grid, radius %d)\n", a.Visible, coverage, a.SightRadius)
}
