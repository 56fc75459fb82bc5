package service

import (
	"time"

	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
)

// SessionInfo provides information about a grid session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	TileSize       int                `json:"tile_size"`
	Anchor         engine.Position    `json:"anchor"`
	PathLength     int                `json:"path_length"`
	Obstacles      int                `json:"obstacles"`
	GridConfig     *engine.GridConfig `json:"grid_config"`
}

// PathRequest asks for a route between two points. Empty Heuristic and a
// nil AllowDiagonal fall back to the session config.
type PathRequest struct {
	Start         engine.PixelPos `json:"start"`
	Goal          engine.PixelPos `json:"goal"`
	Unit          string          `json:"unit,omitempty"`
	Heuristic     string          `json:"heuristic,omitempty"`
	AllowDiagonal *bool           `json:"allow_diagonal,omitempty"`
}

// PathResult contains the outcome of a search
type PathResult struct {
	Found     bool              `json:"found"`
	Path      []engine.Position `json:"path,omitempty"`
	Length    int               `json:"length"`
	Cost      int               `json:"cost"`
	Expanded  int               `json:"expanded"`
	Heuristic string            `json:"heuristic"`
	Diagonal  bool              `json:"allow_diagonal"`
}

// SightRequest recomputes visibility. A nil Origin uses the session anchor;
// a nil Radius uses the configured sight radius.
type SightRequest struct {
	Origin *engine.PixelPos `json:"origin,omitempty"`
	Unit   string           `json:"unit,omitempty"`
	Radius *int             `json:"radius,omitempty"`
}

// SightResult lists the cells visible after a sight pass
type SightResult struct {
	Origin   engine.Position   `json:"origin"`
	Radius   int               `json:"radius"`
	Visible  []engine.Position `json:"visible"`
	Revealed []engine.Position `json:"revealed"`
	Explored int               `json:"explored"`
}

// TileRequest tests one cell against a visibility mode
type TileRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Unit string  `json:"unit,omitempty"`
	Mode string  `json:"mode"`
}

// TileResult reports a tile query
type TileResult struct {
	Cell  engine.Position `json:"cell"`
	Mode  string          `json:"mode"`
	Match bool            `json:"match"`
}

// RadiusRequest iterates the square around a point, or around the anchor
// when Self is set
type RadiusRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Unit   string  `json:"unit,omitempty"`
	Radius int     `json:"radius"`
	Self   bool    `json:"self,omitempty"`
}

// RadiusResult lists the visited cells in visit order
type RadiusResult struct {
	Radius int               `json:"radius"`
	Cells  []engine.Position `json:"cells"`
}

// AnchorRequest moves the session's point of view
type AnchorRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Unit string  `json:"unit,omitempty"`
}

// StepInfo reports one movement tick or cursor change
type StepInfo struct {
	engine.StepResult
	Moved  bool    `json:"moved,omitempty"`
	Active bool    `json:"active"`
	PathX  float64 `json:"path_x"`
	PathY  float64 `json:"path_y"`
	Length int     `json:"length"`
}

// ObstacleUpdate adds objects to the session. Non-nil Walkable and
// BlockSight override the per-object attributes.
type ObstacleUpdate struct {
	Objects    []obstacles.Object `json:"objects"`
	Walkable   *bool              `json:"walkable,omitempty"`
	BlockSight *bool              `json:"block_sight,omitempty"`
}

// Region is a pixel rectangle
type Region struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// ObstacleResult reports the objects touched by an obstacle operation
type ObstacleResult struct {
	Objects      []obstacles.Object `json:"objects"`
	CellsChanged int                `json:"cells_changed"`
	Total        int                `json:"total"`
}

// ConfigInfo provides information about a grid configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	TileSize    int    `json:"tile_size"`
	SightRadius int    `json:"sight_radius"`
	Layers      int    `json:"obstacle_layers"`
}
