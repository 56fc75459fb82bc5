package engine

// NodeType represents the pathfinding role of a grid cell
type NodeType string

const (
	Walkable   NodeType = "walkable"
	Unwalkable NodeType = "unwalkable"
	Start      NodeType = "start"
	Goal       NodeType = "goal"

	// Validation constants
	MinGridSize    = 1
	MaxGridSize    = 512
	MinTileSize    = 1
	MaxTileSize    = 1024
	MaxSightRadius = 128

	// Step costs in tenths of a tile
	OrthogonalCost = 10
	DiagonalCost   = 14
)

// Unit selects how spatial inputs are interpreted
type Unit string

const (
	Pixels Unit = "pixels"
	Tiles  Unit = "tiles"
)

// Cell represents a single grid cell
type Cell struct {
	Type        NodeType `json:"type"`
	Walkable    bool     `json:"walkable"`
	BlockSight  bool     `json:"block_sight"`
	Sight       bool     `json:"sight"`
	AlreadySeen bool     `json:"already_seen"`
	// SeenBefore holds AlreadySeen as it stood when the latest sight pass began
	SeenBefore bool `json:"seen_before"`
}

// Position is a cell address in grid units
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// PixelPos is a point in pixel units
type PixelPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridConfig represents an engine configuration loaded from JSON or YAML
type GridConfig struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	TileSize       int      `json:"tile_size" yaml:"tile_size"`
	SightRadius    int      `json:"sight_radius" yaml:"sight_radius"`
	Width          int      `json:"width" yaml:"width"`
	Height         int      `json:"height" yaml:"height"`
	Speed          float64  `json:"speed" yaml:"speed"`
	Heuristic      string   `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
	AllowDiagonal  bool     `json:"allow_diagonal" yaml:"allow_diagonal"`
	Layout         []string `json:"layout,omitempty" yaml:"layout,omitempty"`
	ObstacleLayers []string `json:"obstacle_layers,omitempty" yaml:"obstacle_layers,omitempty"`
}

// GridSnapshot is a point-in-time copy of an engine's observable state
type GridSnapshot struct {
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	TileSize    int        `json:"tile_size"`
	SightRadius int        `json:"sight_radius"`
	Anchor      Position   `json:"anchor"`
	Cells       [][]Cell   `json:"cells"`
	Path        []Position `json:"path,omitempty"`
	PathIndex   int        `json:"path_index"`
	Visible     int        `json:"visible"`
	Explored    int        `json:"explored"`
}
