package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
)

// gridServiceImpl implements the GridService interface
type gridServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGridService creates a new grid service instance
func NewGridService(sessions SessionManager, configs ConfigManager) GridService {
	return &gridServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gridServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

func (s *gridServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Width:          sess.Engine.Grid().Width(),
		Height:         sess.Engine.Grid().Height(),
		TileSize:       sess.Engine.TileSize(),
		Anchor:         sess.Engine.Anchor(),
		PathLength:     len(sess.Engine.Path()),
		Obstacles:      sess.Obstacles.Len(),
		GridConfig:     sess.Config,
	}
}

// getSession looks up a session and touches its access time
func (s *gridServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// applyLayers loads the config's obstacle layers into the session
func (s *gridServiceImpl) applyLayers(sess *Session) error {
	objects, err := s.configs.LoadLayers(sess.Config)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if err := sess.Obstacles.Insert(obj); err != nil {
			return err
		}
		sess.Engine.SetObstacles(sess.Obstacles.Cells(obj), obj.Walkable, obj.BlockSight)
	}
	return nil
}

func parseUnit(name string) (engine.Unit, error) {
	unit, err := engine.ParseUnit(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return unit, nil
}

// CreateSession creates a new grid session
func (s *gridServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GridConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configName

	if err := s.applyLayers(sess); err != nil {
		s.sessions.Delete(sess.ID)
		return nil, fmt.Errorf("failed to load obstacle layers: %w", err)
	}

	log.Printf("[SESSION] created id=%s config=%s grid=%dx%d obstacles=%d",
		sess.ID, s.getConfigID(sess), config.Width, config.Height, sess.Obstacles.Len())

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gridServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gridServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gridServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// ResetSession rebuilds the session grid from its configuration
func (s *gridServiceImpl) ResetSession(ctx context.Context, sessionID string) (*engine.GridSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Reset()
	sess.Obstacles = obstacles.NewIndex(sess.Config.TileSize, sess.Config.Width, sess.Config.Height)
	if err := s.applyLayers(sess); err != nil {
		return nil, fmt.Errorf("failed to reload obstacle layers: %w", err)
	}
	return sess.Engine.Snapshot(), nil
}

// GetGrid returns a snapshot of the session grid
func (s *gridServiceImpl) GetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// FindPath searches for a route and loads it as the session's active path
func (s *gridServiceImpl) FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	unit, err := parseUnit(req.Unit)
	if err != nil {
		return nil, err
	}
	name := req.Heuristic
	if name == "" {
		name = sess.Config.Heuristic
	}
	h, err := engine.ParseHeuristic(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	diagonal := sess.Config.AllowDiagonal
	if req.AllowDiagonal != nil {
		diagonal = *req.AllowDiagonal
	}

	path, found := sess.Engine.FindPath(req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y, unit, h, diagonal)
	return &PathResult{
		Found:     found,
		Path:      path,
		Length:    len(path),
		Cost:      engine.PathCost(path),
		Expanded:  sess.Engine.Expanded(),
		Heuristic: string(h),
		Diagonal:  diagonal,
	}, nil
}

func stepInfo(eng *engine.GridEngine, r engine.StepResult) *StepInfo {
	return &StepInfo{
		StepResult: r,
		Active:     len(eng.Path()) > 0,
		PathX:      eng.PathX(),
		PathY:      eng.PathY(),
		Length:     len(eng.Path()),
	}
}

// Step advances movement along the active path by one tick
func (s *gridServiceImpl) Step(ctx context.Context, sessionID string, includeLast bool) (*StepInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return stepInfo(sess.Engine, sess.Engine.Step(includeLast)), nil
}

// MoveCursor advances or retreats the active path cursor by one cell
func (s *gridServiceImpl) MoveCursor(ctx context.Context, sessionID, op string) (*StepInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var moved bool
	switch strings.ToLower(op) {
	case CursorAdvance:
		moved = sess.Engine.Advance()
	case CursorRetreat:
		moved = sess.Engine.Retreat()
	default:
		return nil, fmt.Errorf("%w: unknown cursor op %q", ErrInvalidRequest, op)
	}

	info := stepInfo(sess.Engine, engine.StepResult{Direction: engine.None, Index: sess.Engine.PathIndex()})
	info.Moved = moved
	return info, nil
}

// SetAnchor moves the session's point of view
func (s *gridServiceImpl) SetAnchor(ctx context.Context, sessionID string, req AnchorRequest) (*engine.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		return nil, err
	}

	sess.Engine.SetAnchor(req.X, req.Y, unit)
	anchor := sess.Engine.Anchor()
	return &anchor, nil
}

// ComputeSight recomputes visibility and reports visible and newly revealed cells
func (s *gridServiceImpl) ComputeSight(ctx context.Context, sessionID string, req SightRequest) (*SightResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	radius := eng.SightRadius()
	if req.Radius != nil {
		radius = *req.Radius
	}
	if radius < 0 || radius > engine.MaxSightRadius {
		return nil, fmt.Errorf("%w: radius must be between 0 and %d, got %d", ErrInvalidRequest, engine.MaxSightRadius, radius)
	}

	origin := eng.Anchor()
	if req.Origin != nil {
		origin = eng.Locate(req.Origin.X, req.Origin.Y, unit)
	}
	eng.Grid().ComputeSight(origin, radius)

	result := &SightResult{
		Origin:   origin,
		Radius:   radius,
		Visible:  []engine.Position{},
		Revealed: []engine.Position{},
	}
	grid := eng.Grid()
	for col := 0; col < grid.Width(); col++ {
		for row := 0; row < grid.Height(); row++ {
			pos := engine.Position{Col: col, Row: row}
			if grid.CheckTile(pos, engine.Seen) {
				result.Visible = append(result.Visible, pos)
				if grid.CheckTile(pos, engine.SeenAndNotSeenBefore) {
					result.Revealed = append(result.Revealed, pos)
				}
			}
			if grid.CheckTile(pos, engine.SeenBefore) || grid.CheckTile(pos, engine.Seen) {
				result.Explored++
			}
		}
	}
	return result, nil
}

// CheckTile tests one cell against a visibility mode
func (s *gridServiceImpl) CheckTile(ctx context.Context, sessionID string, req TileRequest) (*TileResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		return nil, err
	}
	mode, err := engine.ParseTileMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return &TileResult{
		Cell:  sess.Engine.Locate(req.X, req.Y, unit),
		Mode:  string(mode),
		Match: sess.Engine.CheckTile(req.X, req.Y, unit, mode),
	}, nil
}

// RadiusCells lists the cells of the clamped square around a point or the anchor
func (s *gridServiceImpl) RadiusCells(ctx context.Context, sessionID string, req RadiusRequest) (*RadiusResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	unit, err := parseUnit(req.Unit)
	if err != nil {
		return nil, err
	}
	if req.Radius < 0 || req.Radius > engine.MaxGridSize {
		return nil, fmt.Errorf("%w: radius must be between 0 and %d, got %d", ErrInvalidRequest, engine.MaxGridSize, req.Radius)
	}

	result := &RadiusResult{Radius: req.Radius, Cells: []engine.Position{}}
	collect := func(col, row int) {
		result.Cells = append(result.Cells, engine.Position{Col: col, Row: row})
	}
	if req.Self {
		sess.Engine.ForEachSelfInRadius(req.Radius, collect)
	} else {
		sess.Engine.ForEachInRadius(req.X, req.Y, unit, req.Radius, collect)
	}
	return result, nil
}

// SetObstacles indexes objects and applies their attributes to the grid
func (s *gridServiceImpl) SetObstacles(ctx context.Context, sessionID string, update ObstacleUpdate) (*ObstacleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if len(update.Objects) == 0 {
		return nil, fmt.Errorf("%w: no objects given", ErrInvalidRequest)
	}

	result := &ObstacleResult{Objects: make([]obstacles.Object, 0, len(update.Objects))}
	for _, obj := range update.Objects {
		if update.Walkable != nil {
			obj.Walkable = obstacles.Flag(*update.Walkable)
		}
		if update.BlockSight != nil {
			obj.BlockSight = obstacles.Flag(*update.BlockSight)
		}
		if err := sess.Obstacles.Insert(obj); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if obj.Walkable != nil || obj.BlockSight != nil {
			result.CellsChanged += sess.Engine.SetObstacles(sess.Obstacles.Cells(obj), obj.Walkable, obj.BlockSight)
		}
		result.Objects = append(result.Objects, obj)
	}
	result.Total = sess.Obstacles.Len()
	return result, nil
}

// ClearRegion removes every object intersecting the region. The cells
// they covered go back to their layout terrain, then the remaining
// objects over those cells are applied again in ID order.
func (s *gridServiceImpl) ClearRegion(ctx context.Context, sessionID string, region Region) (*ObstacleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if region.W < 0 || region.H < 0 {
		return nil, fmt.Errorf("%w: region has negative size", ErrInvalidRequest)
	}

	found := sess.Obstacles.Search(region.X, region.Y, region.W, region.H)
	result := &ObstacleResult{Objects: make([]obstacles.Object, 0, len(found))}
	tileSize := sess.Engine.TileSize()
	cleared := make(map[engine.Position]bool)
	var cells []engine.PixelPos
	for _, obj := range found {
		if _, err := sess.Obstacles.Remove(obj.ID); err != nil {
			continue
		}
		for _, px := range sess.Obstacles.Cells(obj) {
			pos := engine.Position{Col: engine.Grid(px.X, tileSize), Row: engine.Grid(px.Y, tileSize)}
			if !cleared[pos] {
				cleared[pos] = true
				cells = append(cells, px)
			}
		}
		result.Objects = append(result.Objects, obj)
	}
	result.CellsChanged = sess.Engine.Restore(cells)

	remaining := make(map[string]obstacles.Object)
	for _, removed := range result.Objects {
		for _, other := range sess.Obstacles.Search(removed.X, removed.Y, removed.W, removed.H) {
			remaining[other.ID] = other
		}
	}
	ids := make([]string, 0, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		other := remaining[id]
		var overlap []engine.PixelPos
		for _, px := range sess.Obstacles.Cells(other) {
			if cleared[engine.Position{Col: engine.Grid(px.X, tileSize), Row: engine.Grid(px.Y, tileSize)}] {
				overlap = append(overlap, px)
			}
		}
		sess.Engine.SetObstacles(overlap, other.Walkable, other.BlockSight)
	}

	result.Total = sess.Obstacles.Len()
	return result, nil
}

// ListObstacles returns the session's indexed objects
func (s *gridServiceImpl) ListObstacles(ctx context.Context, sessionID string) ([]obstacles.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Obstacles.All(), nil
}

// ListConfigs returns available configurations
func (s *gridServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gridServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gridServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error {
	return s.configs.SaveConfig(configName, config)
}
