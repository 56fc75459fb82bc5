// Package service provides the business logic layer for gridsight.
//
// The service package implements:
//   - Multi-session grid management
//   - Pathfinding and path cursor movement per session
//   - Field-of-view passes and tile visibility queries
//   - Runtime obstacles backed by a spatial index
//
// Core Interfaces:
//
// GridService is the main service interface used by the HTTP, WebSocket
// and MCP transports. SessionManager stores sessions and ConfigManager
// loads grid configurations and their obstacle layers.
//
// Every session owns its own engine and obstacle index, so operations on
// one session never observe another. A service-wide lock serialises
// mutations; read-only queries share it.
//
// Errors:
//
// Failures wrap one of ErrSessionNotFound, ErrConfigNotFound,
// ErrInvalidConfig or ErrInvalidRequest so transports can map them with
// errors.Is.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gridService := service.NewGridService(sessionMgr, configMgr)
//
//	info, err := gridService.CreateSession(ctx, "caverns")
//	result, err := gridService.FindPath(ctx, info.ID, service.PathRequest{
//		Start: engine.PixelPos{X: 1, Y: 1},
//		Goal:  engine.PixelPos{X: 18, Y: 12},
//	})
package service
