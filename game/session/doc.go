// Package session keeps live game sessions and their durable copies.
//
// Manager is an in-memory registry keyed by case-insensitive session id.
// Ids are either caller supplied (letters, digits, '-' and '_') or an
// 8-character prefix of a random UUID. Each session owns one engine; callers
// that mutate it must serialize access themselves (the service layer does).
//
// Persistence:
//
// A Manager may be backed by a SessionPersistence store. Two are provided:
//
//   - FilePersistence writes one JSON document per session to a directory.
//   - SQLitePersistence keeps one row per session in a SQLite database.
//
// Both store the full engine state including the random stream position, so
// a session loaded after a restart produces the same spawns as it would have
// without the restart. Get falls back to the store for sessions not in memory,
// and CleanupExpiredSessions only drops the in-memory copy.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("sessions.db", configs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	manager := session.NewManagerWithPersistence(store)
//	sess, err := manager.Create("", "classic", configs.GetDefault(), seed)
package session
