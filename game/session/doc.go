// Package session provides in-memory session management for gridsight.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Each session owns its own GridEngine and obstacle index, built from the
// grid configuration it was created with. Sessions are not persisted and
// disappear when the process exits.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Generated IDs are drawn from crypto/rand and retried
// until unused.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions idle longer than a given age;
// the server runs it periodically.
package session
