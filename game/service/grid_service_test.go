package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
	"github.com/wricardo/gridsight/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GridConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Obstacles:      obstacles.NewIndex(config.TileSize, config.Width, config.Height),
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GridConfig
	layers  map[string][]obstacles.Object
	saved   map[string]*engine.GridConfig
}

func createTestConfig() *engine.GridConfig {
	return &engine.GridConfig{
		Name:        "test",
		Description: "Test configuration",
		TileSize:    10,
		SightRadius: 3,
		Width:       6,
		Height:      4,
		Speed:       5,
		Heuristic:   "manhattan",
		Layout: []string{
			"@.....",
			".##...",
			"......",
			"......",
		},
	}
}

func NewMockConfigManager() *MockConfigManager {
	layered := createTestConfig()
	layered.Name = "layered"
	layered.ObstacleLayers = []string{"rocks.geojson"}

	broken := createTestConfig()
	broken.Name = "broken-layers"
	broken.ObstacleLayers = []string{"missing.geojson"}

	return &MockConfigManager{
		configs: map[string]*engine.GridConfig{
			"test":          createTestConfig(),
			"layered":       layered,
			"broken-layers": broken,
		},
		layers: map[string][]obstacles.Object{
			"layered": {{ID: "rocks/0", X: 50, Y: 30, W: 10, H: 10, Walkable: obstacles.Flag(false), BlockSight: obstacles.Flag(true)}},
		},
		saved: make(map[string]*engine.GridConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GridConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for name, config := range m.configs {
		configs = append(configs, &service.ConfigInfo{
			Filename: name + ".json",
			ConfigID: name,
			Name:     config.Name,
			Width:    config.Width,
			Height:   config.Height,
		})
	}
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.GridConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GridConfig) error {
	if err := engine.ValidateGridConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	return nil
}

func (m *MockConfigManager) LoadLayers(config *engine.GridConfig) ([]obstacles.Object, error) {
	if len(config.ObstacleLayers) == 0 {
		return nil, nil
	}
	objects, exists := m.layers[config.Name]
	if !exists {
		return nil, errors.New("layer file missing")
	}
	return objects, nil
}

func newTestService(t *testing.T) (service.GridService, *MockSessionManager, string) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGridService(sessions, NewMockConfigManager())
	info, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return svc, sessions, info.ID
}

func TestGridService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	svc := service.NewGridService(sessions, NewMockConfigManager())

	t.Run("default config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.Width != 6 || info.Height != 4 || info.TileSize != 10 {
			t.Errorf("Unexpected dimensions %+v", info)
		}
		if info.Anchor != (engine.Position{Col: 0, Row: 0}) {
			t.Errorf("Expected anchor at spawn, got %v", info.Anchor)
		}
		if info.ConfigName != "test" {
			t.Errorf("Expected config name resolved to 'test', got %q", info.ConfigName)
		}
	})

	t.Run("config with obstacle layers", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "layered")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.Obstacles != 1 {
			t.Errorf("Expected 1 layer obstacle, got %d", info.Obstacles)
		}
		grid, _ := svc.GetGrid(ctx, info.ID)
		if c := grid.Cells[5][3]; c.Walkable || !c.BlockSight {
			t.Errorf("Expected layer obstacle at (5,3), got %+v", c)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Fatalf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("layer failure removes session", func(t *testing.T) {
		before := len(sessions.sessions)
		if _, err := svc.CreateSession(ctx, "broken-layers"); err == nil {
			t.Fatal("Expected layer error")
		}
		if len(sessions.sessions) != before {
			t.Error("Expected failed session to be deleted")
		}
	})
}

func TestGridService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if _, err := svc.GetSession(ctx, id); err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}

	list, _ := svc.ListSessions(ctx)
	if len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, id); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := svc.GetSession(ctx, id); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, id); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGridService_FindPath(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	t.Run("tile units with config defaults", func(t *testing.T) {
		result, err := svc.FindPath(ctx, id, service.PathRequest{
			Start: engine.PixelPos{X: 0, Y: 0},
			Goal:  engine.PixelPos{X: 3, Y: 0},
		})
		if err != nil {
			t.Fatalf("FindPath failed: %v", err)
		}
		if !result.Found || result.Length != 4 || result.Cost != 30 {
			t.Errorf("Unexpected result %+v", result)
		}
		if result.Heuristic != "manhattan" || result.Diagonal {
			t.Errorf("Expected config defaults, got %s diagonal=%v", result.Heuristic, result.Diagonal)
		}
	})

	t.Run("pixel units with overrides", func(t *testing.T) {
		diagonal := true
		result, err := svc.FindPath(ctx, id, service.PathRequest{
			Start:         engine.PixelPos{X: 5, Y: 35},
			Goal:          engine.PixelPos{X: 55, Y: 5},
			Unit:          "px",
			Heuristic:     "diagonal",
			AllowDiagonal: &diagonal,
		})
		if err != nil {
			t.Fatalf("FindPath failed: %v", err)
		}
		if !result.Found {
			t.Fatal("Expected path")
		}
		if result.Path[0] != (engine.Position{Col: 0, Row: 3}) || result.Path[result.Length-1] != (engine.Position{Col: 5, Row: 0}) {
			t.Errorf("Unexpected endpoints %v", result.Path)
		}
		if result.Expanded == 0 {
			t.Error("Expected expanded node count")
		}
	})

	t.Run("unreachable goal", func(t *testing.T) {
		result, err := svc.FindPath(ctx, id, service.PathRequest{
			Start: engine.PixelPos{X: 0, Y: 0},
			Goal:  engine.PixelPos{X: 1, Y: 1},
		})
		if err != nil {
			t.Fatalf("FindPath failed: %v", err)
		}
		if result.Found || result.Length != 0 {
			t.Errorf("Expected no path into a wall, got %+v", result)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := svc.FindPath(ctx, id, service.PathRequest{Unit: "miles"})
		if !errors.Is(err, service.ErrInvalidRequest) || !errors.Is(err, engine.ErrInvalidUnit) {
			t.Errorf("Expected wrapped invalid unit, got %v", err)
		}
		_, err = svc.FindPath(ctx, id, service.PathRequest{Heuristic: "greedy"})
		if !errors.Is(err, service.ErrInvalidRequest) || !errors.Is(err, engine.ErrUnknownHeuristic) {
			t.Errorf("Expected wrapped unknown heuristic, got %v", err)
		}
	})
}

func TestGridService_CursorAndStep(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	planned, err := svc.FindPath(ctx, id, service.PathRequest{Goal: engine.PixelPos{X: 3, Y: 0}})
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if !planned.Found || planned.Length != 4 {
		t.Fatalf("Expected a 4-cell path, got %+v", planned)
	}

	info, err := svc.MoveCursor(ctx, id, service.CursorAdvance)
	if err != nil {
		t.Fatalf("MoveCursor failed: %v", err)
	}
	if !info.Moved || info.Index != 1 || info.PathX != 10 || info.PathY != 0 {
		t.Errorf("Unexpected cursor after advance %+v", info)
	}

	info, _ = svc.MoveCursor(ctx, id, "RETREAT")
	if !info.Moved || info.Index != 0 {
		t.Errorf("Unexpected cursor after retreat %+v", info)
	}
	info, _ = svc.MoveCursor(ctx, id, service.CursorRetreat)
	if info.Moved {
		t.Error("Expected retreat at the first cell to be a no-op")
	}

	if _, err := svc.MoveCursor(ctx, id, "sideways"); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}

	walk := func(t *testing.T, includeLast bool) *service.StepInfo {
		t.Helper()
		var last *service.StepInfo
		for i := 0; i < 20; i++ {
			last, err = svc.Step(ctx, id, includeLast)
			if err != nil {
				t.Fatalf("Step failed: %v", err)
			}
			if last.Direction == engine.Finished {
				return last
			}
			if last.Direction != engine.Right {
				t.Errorf("Tick %d: expected right, got %s", i, last.Direction)
			}
		}
		t.Fatalf("Expected to finish the path, got %s", last.Direction)
		return nil
	}

	t.Run("finishing discards the path", func(t *testing.T) {
		last := walk(t, false)
		if last.Index != 3 {
			t.Errorf("Expected finish at index 3, got %d", last.Index)
		}
		if last.Active || last.Length != 0 {
			t.Errorf("Expected the path to be cleared, got active=%v length=%d", last.Active, last.Length)
		}
		if after, _ := svc.Step(ctx, id, false); after.Direction != engine.None {
			t.Errorf("Expected none after finishing, got %s", after.Direction)
		}
	})

	t.Run("include last keeps the path", func(t *testing.T) {
		if _, err := svc.FindPath(ctx, id, service.PathRequest{Goal: engine.PixelPos{X: 3, Y: 0}}); err != nil {
			t.Fatalf("FindPath failed: %v", err)
		}
		last := walk(t, true)
		if !last.Active || last.Length != 4 || last.Index != 3 {
			t.Errorf("Expected the 4-cell path to be kept at index 3, got %+v", last)
		}
		if last.PathX != 30 || last.PathY != 0 {
			t.Errorf("Expected cursor on the goal pixel, got (%v,%v)", last.PathX, last.PathY)
		}
	})
}

func TestGridService_Sight(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	first, err := svc.ComputeSight(ctx, id, service.SightRequest{})
	if err != nil {
		t.Fatalf("ComputeSight failed: %v", err)
	}
	if first.Origin != (engine.Position{Col: 0, Row: 0}) || first.Radius != 3 {
		t.Errorf("Expected anchor origin and config radius, got %v r=%d", first.Origin, first.Radius)
	}
	if len(first.Visible) == 0 || first.Visible[0] != (engine.Position{Col: 0, Row: 0}) {
		t.Errorf("Expected origin to be visible first, got %v", first.Visible)
	}
	if len(first.Revealed) != len(first.Visible) || first.Explored != len(first.Visible) {
		t.Errorf("Expected every visible cell to be new on the first pass: %+v", first)
	}

	second, _ := svc.ComputeSight(ctx, id, service.SightRequest{})
	if len(second.Revealed) != 0 {
		t.Errorf("Expected nothing new on a repeat pass, got %v", second.Revealed)
	}

	radius := 1
	moved, err := svc.ComputeSight(ctx, id, service.SightRequest{
		Origin: &engine.PixelPos{X: 5, Y: 3},
		Radius: &radius,
	})
	if err != nil {
		t.Fatalf("ComputeSight failed: %v", err)
	}
	// the diagonal neighbour lies outside the euclidean radius
	if len(moved.Visible) != 3 || len(moved.Revealed) != 3 {
		t.Errorf("Expected 3 fresh cells in the far corner, got %+v", moved)
	}
	if moved.Explored != first.Explored+3 {
		t.Errorf("Expected explored count to grow by 3, got %d", moved.Explored)
	}

	tile, err := svc.CheckTile(ctx, id, service.TileRequest{X: 0, Y: 0, Mode: "not-seen-and-seen-before"})
	if err != nil {
		t.Fatalf("CheckTile failed: %v", err)
	}
	if !tile.Match || tile.Cell != (engine.Position{Col: 0, Row: 0}) {
		t.Errorf("Expected origin to be remembered but not visible, got %+v", tile)
	}

	bad := -1
	if _, err := svc.ComputeSight(ctx, id, service.SightRequest{Radius: &bad}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for negative radius, got %v", err)
	}
	if _, err := svc.CheckTile(ctx, id, service.TileRequest{Mode: "glimpsed"}); !errors.Is(err, engine.ErrUnknownTileMode) {
		t.Errorf("Expected ErrUnknownTileMode, got %v", err)
	}
}

func TestGridService_AnchorAndRadius(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	pos, err := svc.SetAnchor(ctx, id, service.AnchorRequest{X: 25, Y: 15, Unit: "pixels"})
	if err != nil {
		t.Fatalf("SetAnchor failed: %v", err)
	}
	if *pos != (engine.Position{Col: 2, Row: 1}) {
		t.Errorf("Expected anchor (2,1), got %v", *pos)
	}

	svc.SetAnchor(ctx, id, service.AnchorRequest{})
	self, err := svc.RadiusCells(ctx, id, service.RadiusRequest{Radius: 1, Self: true})
	if err != nil {
		t.Fatalf("RadiusCells failed: %v", err)
	}
	if len(self.Cells) != 3 {
		t.Errorf("Expected 3 clear cells around the spawn, got %v", self.Cells)
	}

	around, _ := svc.RadiusCells(ctx, id, service.RadiusRequest{X: 5, Y: 3, Radius: 1})
	if len(around.Cells) != 4 {
		t.Errorf("Expected 4 clamped cells in the corner, got %v", around.Cells)
	}

	if _, err := svc.RadiusCells(ctx, id, service.RadiusRequest{Radius: -1}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest, got %v", err)
	}
}

func TestGridService_Obstacles(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	result, err := svc.SetObstacles(ctx, id, service.ObstacleUpdate{
		Objects: []obstacles.Object{{ID: "crate", X: 30, Y: 20, W: 10, H: 10, Walkable: obstacles.Flag(false)}},
	})
	if err != nil {
		t.Fatalf("SetObstacles failed: %v", err)
	}
	if result.CellsChanged != 1 || result.Total != 1 {
		t.Errorf("Unexpected result %+v", result)
	}

	grid, _ := svc.GetGrid(ctx, id)
	if c := grid.Cells[3][2]; c.Walkable || c.BlockSight {
		t.Errorf("Expected movement-only crate at (3,2), got %+v", c)
	}

	blockSight := true
	result, _ = svc.SetObstacles(ctx, id, service.ObstacleUpdate{
		Objects:    []obstacles.Object{{ID: "hedge", X: 40, Y: 30, W: 20, H: 5, Walkable: obstacles.Flag(true)}},
		BlockSight: &blockSight,
	})
	if hedge := result.Objects[0]; hedge.BlockSight == nil || !*hedge.BlockSight || result.CellsChanged != 2 {
		t.Errorf("Expected override to apply to both hedge cells, got %+v", result)
	}

	list, _ := svc.ListObstacles(ctx, id)
	if len(list) != 2 || list[0].ID != "crate" {
		t.Errorf("Expected crate and hedge sorted by id, got %v", list)
	}

	cleared, err := svc.ClearRegion(ctx, id, service.Region{X: 25, Y: 15, W: 10, H: 10})
	if err != nil {
		t.Fatalf("ClearRegion failed: %v", err)
	}
	if len(cleared.Objects) != 1 || cleared.Objects[0].ID != "crate" || cleared.Total != 1 {
		t.Errorf("Expected only the crate to be cleared, got %+v", cleared)
	}
	grid, _ = svc.GetGrid(ctx, id)
	if !grid.Cells[3][2].Walkable {
		t.Error("Expected cleared cell to be walkable again")
	}

	if _, err := svc.SetObstacles(ctx, id, service.ObstacleUpdate{}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for empty update, got %v", err)
	}
	if _, err := svc.SetObstacles(ctx, id, service.ObstacleUpdate{Objects: []obstacles.Object{{W: 1, H: 1}}}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for missing id, got %v", err)
	}
	if _, err := svc.ClearRegion(ctx, id, service.Region{W: -1}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for negative region, got %v", err)
	}
}

func TestGridService_ObstacleAttributesLeftUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	result, err := svc.SetObstacles(ctx, id, service.ObstacleUpdate{
		Objects: []obstacles.Object{{ID: "marker", X: 0, Y: 30, W: 10, H: 10}},
	})
	if err != nil {
		t.Fatalf("SetObstacles failed: %v", err)
	}
	if result.CellsChanged != 0 || result.Total != 1 {
		t.Errorf("Expected an indexed object that changes no cells, got %+v", result)
	}
	grid, _ := svc.GetGrid(ctx, id)
	if c := grid.Cells[0][3]; !c.Walkable || c.BlockSight {
		t.Errorf("Expected (0,3) untouched, got %+v", c)
	}

	// Only block_sight is given, so the wall keeps its walkable flag
	svc.SetObstacles(ctx, id, service.ObstacleUpdate{
		Objects: []obstacles.Object{{ID: "screen", X: 10, Y: 10, W: 10, H: 10, BlockSight: obstacles.Flag(false)}},
	})
	grid, _ = svc.GetGrid(ctx, id)
	if c := grid.Cells[1][1]; c.Walkable || c.BlockSight {
		t.Errorf("Expected (1,1) unwalkable with sight cleared, got %+v", c)
	}
}

func TestGridService_ClearRegionRestoresTerrain(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)
	blocker := func(id string, x, y, w, h float64) obstacles.Object {
		return obstacles.Object{ID: id, X: x, Y: y, W: w, H: h,
			Walkable: obstacles.Flag(false), BlockSight: obstacles.Flag(true)}
	}

	crate := obstacles.Object{ID: "crate", X: 10, Y: 10, W: 10, H: 10,
		Walkable: obstacles.Flag(true), BlockSight: obstacles.Flag(false)}
	if _, err := svc.SetObstacles(ctx, id, service.ObstacleUpdate{
		Objects: []obstacles.Object{crate, blocker("long", 30, 0, 20, 10), blocker("short", 40, 0, 10, 10)},
	}); err != nil {
		t.Fatalf("SetObstacles failed: %v", err)
	}

	tests := []struct {
		name               string
		region             service.Region
		cleared            string
		col, row           int
		walkable, blocking bool
	}{
		{"layout wall comes back", service.Region{X: 12, Y: 12, W: 2, H: 2}, "crate", 1, 1, false, true},
		{"freed cell opens", service.Region{X: 30, Y: 0, W: 5, H: 5}, "long", 3, 0, true, false},
		{"overlapping object still blocks", service.Region{}, "", 4, 0, false, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.cleared != "" {
				result, err := svc.ClearRegion(ctx, id, test.region)
				if err != nil {
					t.Fatalf("ClearRegion failed: %v", err)
				}
				if len(result.Objects) != 1 || result.Objects[0].ID != test.cleared {
					t.Fatalf("Expected only %s to be cleared, got %+v", test.cleared, result.Objects)
				}
			}
			grid, _ := svc.GetGrid(ctx, id)
			c := grid.Cells[test.col][test.row]
			if c.Walkable != test.walkable || c.BlockSight != test.blocking {
				t.Errorf("(%d,%d): expected walkable=%v block=%v, got %+v",
					test.col, test.row, test.walkable, test.blocking, c)
			}
		})
	}

	list, _ := svc.ListObstacles(ctx, id)
	if len(list) != 1 || list[0].ID != "short" {
		t.Errorf("Expected only short to remain indexed, got %v", list)
	}
}

func TestGridService_ResetSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGridService(NewMockSessionManager(), NewMockConfigManager())
	info, _ := svc.CreateSession(ctx, "layered")

	svc.SetObstacles(ctx, info.ID, service.ObstacleUpdate{
		Objects: []obstacles.Object{{ID: "crate", X: 30, Y: 20, W: 10, H: 10, Walkable: obstacles.Flag(false)}},
	})
	svc.ComputeSight(ctx, info.ID, service.SightRequest{})

	snap, err := svc.ResetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("ResetSession failed: %v", err)
	}
	if !snap.Cells[3][2].Walkable {
		t.Error("Expected runtime crate to be gone")
	}
	if snap.Cells[5][3].Walkable {
		t.Error("Expected layer obstacle to be reapplied")
	}
	if snap.Explored != 0 {
		t.Errorf("Expected visibility to reset, got explored=%d", snap.Explored)
	}

	list, _ := svc.ListObstacles(ctx, info.ID)
	if len(list) != 1 || list[0].ID != "rocks/0" {
		t.Errorf("Expected only the layer obstacle, got %v", list)
	}
}

func TestGridService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 3 {
		t.Errorf("Expected 3 configs, got %d (%v)", len(configs), err)
	}

	config, err := svc.LoadConfig(ctx, "test")
	if err != nil || config.Width != 6 {
		t.Errorf("Unexpected config %+v, %v", config, err)
	}

	bad := createTestConfig()
	bad.Name = ""
	if err := svc.SaveConfig(ctx, "bad", bad); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
