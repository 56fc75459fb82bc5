// Package api provides the HTTP REST API for gridsight sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session from a config ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//   - POST /api/sessions/{id}/reset - Rebuild the grid from its config
//
// Grid and Movement:
//   - GET /api/sessions/{id}/grid - Grid snapshot with cells, anchor and path
//   - POST /api/sessions/{id}/path - Find a path and load it as the active path
//   - POST /api/sessions/{id}/step - Advance movement by one tick
//   - POST /api/sessions/{id}/cursor - Move the path cursor ({"op": "advance|retreat"})
//
// Visibility:
//   - POST /api/sessions/{id}/anchor - Move the point of view
//   - POST /api/sessions/{id}/sight - Run a sight pass
//   - GET /api/sessions/{id}/tile?x=&y=&unit=&mode= - Test one cell
//   - GET /api/sessions/{id}/radius?x=&y=&unit=&radius=&self= - List cells around a point
//
// Obstacles:
//   - GET /api/sessions/{id}/obstacles - List indexed objects
//   - POST /api/sessions/{id}/obstacles - Add objects ({"objects": [...]})
//   - DELETE /api/sessions/{id}/obstacles - Remove objects in {"region": {...}}
//
// Configuration:
//   - GET /api/configs, POST /api/configs, GET /api/configs/{name}
//
// Coordinates default to tiles; pass "unit": "pixels" (or ?unit=pixels)
// to send pixel coordinates instead.
//
// Errors are returned as JSON with a status derived from the wrapped
// service error: 404 for unknown sessions and configs, 400 for invalid
// requests and 500 otherwise.
//
//	{"error": "session ab12: session not found"}
package api
