package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Cursor operations accepted by MoveCursor
const (
	CursorAdvance = "advance"
	CursorRetreat = "retreat"
)

// GridService defines all session-scoped pathfinding and visibility operations
type GridService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ResetSession(ctx context.Context, sessionID string) (*engine.GridSnapshot, error)

	// Grid State
	GetGrid(ctx context.Context, sessionID string) (*engine.GridSnapshot, error)

	// Pathfinding
	FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error)
	Step(ctx context.Context, sessionID string, includeLast bool) (*StepInfo, error)
	MoveCursor(ctx context.Context, sessionID, op string) (*StepInfo, error)

	// Visibility
	SetAnchor(ctx context.Context, sessionID string, req AnchorRequest) (*engine.Position, error)
	ComputeSight(ctx context.Context, sessionID string, req SightRequest) (*SightResult, error)
	CheckTile(ctx context.Context, sessionID string, req TileRequest) (*TileResult, error)
	RadiusCells(ctx context.Context, sessionID string, req RadiusRequest) (*RadiusResult, error)

	// Obstacles
	SetObstacles(ctx context.Context, sessionID string, update ObstacleUpdate) (*ObstacleResult, error)
	ClearRegion(ctx context.Context, sessionID string, region Region) (*ObstacleResult, error)
	ListObstacles(ctx context.Context, sessionID string) ([]obstacles.Object, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GridConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles grid configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GridConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GridConfig
	SaveConfig(name string, config *engine.GridConfig) error
	LoadLayers(config *engine.GridConfig) ([]obstacles.Object, error)
}

// Session represents an active grid session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GridEngine
	Obstacles      *obstacles.Index
	Config         *engine.GridConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
