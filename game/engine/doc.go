// Package engine provides grid pathfinding and visibility for tile-based hosts.
//
// The engine package implements:
//   - A grid of cells with walkable and sight-blocking attributes
//   - A* search with 4- or 8-connected movement
//   - Edge-ray field of view with explored memory
//   - Tile queries combining current and remembered visibility
//   - Constant-speed movement along a found path
//
// Core Types:
//
// The Engine interface defines the host-facing contract, implemented by
// GridEngine. GridMap owns the cells, Pathfinder runs searches over it and
// Stepper walks the active path. GridConfig describes a grid and its
// layout, loaded from JSON or YAML by the config package.
//
// Coordinates:
//
// Host inputs carry a Unit. Pixel inputs are floor-divided by the tile
// size; tile inputs are used as-is. Every cell address is clamped into the
// grid, so out-of-range input never panics.
//
// Usage:
//
//	eng, err := engine.NewGridEngine(32, 6, 40, 30)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	path, ok := eng.FindPath(0, 0, 12, 7, engine.Tiles, engine.Diagonal, true)
//	eng.SetAnchor(0, 0, engine.Tiles)
//	eng.UpdateSight()
//	visible := eng.CheckTile(3, 3, engine.Tiles, engine.Seen)
//
// The engine is not safe for concurrent use. Hosts serialise access, as
// the service package does per session.
package engine
