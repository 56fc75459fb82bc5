// Command viewer is a desktop client that draws a gridsight session and
// follows its WebSocket feed.
//
// Left click plans a path from the anchor to the clicked cell, right click
// moves the anchor and runs a sight pass, SPACE steps along the path and
// R resets the session.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/gridsight/cmd/viewer/remote"
	"github.com/wricardo/gridsight/game/engine"
	hub "github.com/wricardo/gridsight/transport/websocket"
)

const (
	headerHeight = 40
	footerHeight = 24
	maxCellSize  = 40
	minCellSize  = 8
	screenWidth  = 960
	screenHeight = 720
)

var (
	colorFloor   = color.RGBA{128, 128, 128, 255}
	colorWall    = color.RGBA{100, 50, 0, 255}
	colorWater   = color.RGBA{0, 100, 200, 255}
	colorFoliage = color.RGBA{0, 140, 60, 255}
	colorPath    = color.RGBA{255, 165, 0, 255}
	colorCursor  = color.RGBA{255, 255, 100, 255}
	colorAnchor  = color.RGBA{255, 100, 100, 255}
	colorShadow  = color.RGBA{0, 0, 0, 170}
	colorMemory  = color.RGBA{0, 0, 0, 90}
	colorGrid    = color.RGBA{40, 40, 40, 255}
)

// Viewer is the ebiten game for one session
type Viewer struct {
	client    *remote.Client
	sessionID string

	mu      sync.RWMutex
	grid    *engine.GridSnapshot
	status  string
	refresh chan struct{}
}

// NewViewer returns a viewer bound to an existing session
func NewViewer(client *remote.Client, sessionID string) *Viewer {
	return &Viewer{
		client:    client,
		sessionID: sessionID,
		status:    "Loading...",
		refresh:   make(chan struct{}, 1),
	}
}

// Run keeps the snapshot current until ctx is cancelled. Messages without a
// snapshot trigger a refetch.
func (v *Viewer) Run(ctx context.Context) {
	go func() {
		for {
			err := v.client.Subscribe(ctx, v.sessionID, v.handleMessage)
			if ctx.Err() != nil {
				return
			}
			log.Printf("[VIEWER] websocket closed: %v, reconnecting", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()

	v.requestRefresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.refresh:
			grid, err := v.client.Grid(ctx, v.sessionID)
			if err != nil {
				v.setStatus(fmt.Sprintf("ERROR: %v", err))
				continue
			}
			v.mu.Lock()
			v.grid = grid
			v.mu.Unlock()
		}
	}
}

func (v *Viewer) handleMessage(msg hub.Message) {
	if msg.Grid != nil {
		v.mu.Lock()
		v.grid = msg.Grid
		v.mu.Unlock()
	} else {
		v.requestRefresh()
	}
	v.setStatus("event: " + msg.Event)
}

func (v *Viewer) requestRefresh() {
	select {
	case v.refresh <- struct{}{}:
	default:
	}
}

func (v *Viewer) setStatus(s string) {
	v.mu.Lock()
	v.status = s
	v.mu.Unlock()
}

func (v *Viewer) snapshot() (*engine.GridSnapshot, string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.grid, v.status
}

// act runs an API call off the game loop
func (v *Viewer) act(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			v.setStatus(fmt.Sprintf("%s failed: %v", name, err))
		}
	}()
}

// cellSize fits the grid into the window
func cellSize(grid *engine.GridSnapshot) int {
	if grid == nil || grid.Width == 0 || grid.Height == 0 {
		return maxCellSize
	}
	size := min(screenWidth/grid.Width, (screenHeight-headerHeight-footerHeight)/grid.Height)
	return max(minCellSize, min(maxCellSize, size))
}

// cellAt maps a screen point to a grid cell
func cellAt(grid *engine.GridSnapshot, x, y int) (engine.Position, bool) {
	if grid == nil {
		return engine.Position{}, false
	}
	size := cellSize(grid)
	y -= headerHeight
	if x < 0 || y < 0 {
		return engine.Position{}, false
	}
	pos := engine.Position{Col: x / size, Row: y / size}
	if pos.Col >= grid.Width || pos.Row >= grid.Height {
		return engine.Position{}, false
	}
	return pos, true
}

func (v *Viewer) Update() error {
	grid, _ := v.snapshot()
	if grid == nil {
		return nil
	}

	cx, cy := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if goal, ok := cellAt(grid, cx, cy); ok {
			from := grid.Anchor
			v.act("path", func(ctx context.Context) error {
				result, err := v.client.FindPath(ctx, v.sessionID, from, goal)
				if err == nil && !result.Found {
					v.setStatus(fmt.Sprintf("no path to (%d,%d)", goal.Col, goal.Row))
				}
				return err
			})
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if cell, ok := cellAt(grid, cx, cy); ok {
			v.act("sight", func(ctx context.Context) error {
				if err := v.client.SetAnchor(ctx, v.sessionID, cell); err != nil {
					return err
				}
				_, err := v.client.ComputeSight(ctx, v.sessionID)
				return err
			})
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.act("step", func(ctx context.Context) error {
			_, err := v.client.Step(ctx, v.sessionID)
			return err
		})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		v.act("sight", func(ctx context.Context) error {
			_, err := v.client.ComputeSight(ctx, v.sessionID)
			return err
		})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.act("reset", func(ctx context.Context) error {
			return v.client.Reset(ctx, v.sessionID)
		})
	}

	return nil
}

// cellColor returns the terrain color for a cell
func cellColor(c engine.Cell) color.Color {
	switch {
	case !c.Walkable && c.BlockSight:
		return colorWall
	case !c.Walkable:
		return colorWater
	case c.BlockSight:
		return colorFoliage
	default:
		return colorFloor
	}
}

// fogColor darkens cells that are not currently visible. It returns nil
// for visible cells and for grids that have never run a sight pass.
func fogColor(grid *engine.GridSnapshot, c engine.Cell) color.Color {
	if grid.Explored == 0 || c.Sight {
		return nil
	}
	if c.AlreadySeen {
		return colorMemory
	}
	return colorShadow
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	grid, status := v.snapshot()
	if grid == nil {
		ebitenutil.DebugPrint(screen, status)
		return
	}

	size := float32(cellSize(grid))
	for col := 0; col < grid.Width; col++ {
		for row := 0; row < grid.Height; row++ {
			c := grid.Cells[col][row]
			x := float32(col) * size
			y := float32(row)*size + headerHeight
			vector.FillRect(screen, x, y, size, size, cellColor(c), false)
			if fog := fogColor(grid, c); fog != nil {
				vector.FillRect(screen, x, y, size, size, fog, false)
			}
			vector.StrokeRect(screen, x, y, size, size, 1, colorGrid, false)
		}
	}

	for i, p := range grid.Path {
		clr := colorPath
		if i == grid.PathIndex {
			clr = colorCursor
		}
		inset := size / 3
		vector.FillRect(screen, float32(p.Col)*size+inset, float32(p.Row)*size+headerHeight+inset, size-2*inset, size-2*inset, clr, false)
	}

	half := size / 2
	vector.DrawFilledCircle(screen, float32(grid.Anchor.Col)*size+half, float32(grid.Anchor.Row)*size+headerHeight+half, half*0.7, colorAnchor, true)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("session %s  %dx%d  anchor (%d,%d)  path %d  visible %d  explored %d",
		v.sessionID, grid.Width, grid.Height, grid.Anchor.Col, grid.Anchor.Row, len(grid.Path), grid.Visible, grid.Explored), 10, 6)
	ebitenutil.DebugPrintAt(screen, status, 10, 22)
	ebitenutil.DebugPrintAt(screen, "LMB: Path | RMB: Anchor + Sight | SPACE: Step | F: Sight | R: Reset", 10, screenHeight-footerHeight+4)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	cmd := &cli.Command{
		Name:      "viewer",
		Usage:     "Draw a gridsight session and follow its updates",
		ArgsUsage: "[session-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "gridsight server URL",
				Sources: cli.EnvVars("GRIDSIGHT_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config for a new session when no session ID is given",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	client, err := remote.New(cmd.String("server"))
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	sessionID := cmd.Args().First()
	if sessionID == "" {
		info, err := client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		sessionID = info.ID
		log.Printf("[VIEWER] created session %s (%s)", info.ID, info.ConfigName)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	viewer := NewViewer(client, sessionID)
	go viewer.Run(ctx)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gridsight - " + sessionID)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(viewer)
}
