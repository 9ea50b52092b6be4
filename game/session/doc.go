// Package session provides session storage for the Lost Knight game.
//
// Manager keeps sessions in memory behind a RWMutex, with case-insensitive
// 4-character IDs and inactivity cleanup. A SessionPersistence backend makes
// sessions survive restarts: FilePersistence writes one JSON file per session,
// RedisPersistence stores them as Redis keys with an expiry-scored index.
//
// Persisted sessions hold the board configuration and an engine snapshot
// (endpoints, trail and state). Loading replays the snapshot through
// engine.RestoreSession, which rejects trails that are not legal knight walks.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", config)
package session
