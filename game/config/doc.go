// Package config provides grid configuration management for gridsight.
//
// The config package handles:
//   - Loading grid configurations from JSON or YAML files
//   - Loading GeoJSON obstacle layers referenced by a configuration
//   - Default configuration management and discovery
//   - Watching the config directory and refreshing the cache on change
//
// Configuration Format:
//
// A configuration names the grid dimensions, tile size, sight radius,
// movement speed and search defaults. An optional layout paints the
// initial grid one character per cell:
//
//	.  floor
//	#  wall (blocks movement and sight)
//	~  water (blocks movement only)
//	:  foliage (blocks sight only)
//	@  spawn, the initial anchor
//
// Obstacle layers are GeoJSON FeatureCollections in pixel coordinates.
// Each feature's bounding box becomes one obstacle; the walkable and
// block_sight properties default to false and true.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gridConfig, err := manager.LoadConfig("caverns")
//	objects, err := manager.LoadLayers(gridConfig)
//
//	go manager.Watch(ctx)
package config
