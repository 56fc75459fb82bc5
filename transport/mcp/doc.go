// Package mcp exposes the gridsight REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool handler translates its arguments
// into one REST call against the HTTP server and formats the JSON reply as
// text for the agent. It holds no session state of its own.
//
// Tools:
//   - create_session, get_session, list_sessions, reset_session
//   - grid_state: ASCII rendering of terrain, anchor, active path and visibility
//   - find_path, step, move_cursor
//   - set_anchor, compute_sight, check_tile, radius_cells
//   - set_obstacles, clear_region, list_obstacles
//   - list_configs
//
// Transport Modes:
//
// The same MCPServer is served over stdio (server.ServeStdio) or mounted on
// the HTTP router at /mcp, see the root command.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
