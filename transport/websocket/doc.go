// Package websocket pushes live session updates to browser and tool clients.
//
// A central Hub owns every connection. Clients subscribe to one session
// with the ?session=<id> query parameter and receive JSON messages of the
// form:
//
//	{"session_id": "ab12", "event": "path_found", "data": {...}}
//
// Grid-changing events carry a full snapshot in "grid" instead of "data".
// Every message travels in its own text frame. Deleting a session sends
// "session_closed" and then closes its connections. Incoming client
// messages are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastEvent(sessionID, websocket.EventPathFound, result)
package websocket
