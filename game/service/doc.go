// Package service provides the business logic layer for the Lost Knight game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup and random endpoint selection
//   - Move validation, bulk moves and the autosolver loop
//   - Move history and shortest-path queries
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board configuration loading and validation.
// EventPublisher receives the events each operation produces.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Each operation attaches a listener to the engine session, so the
// trail and state notifications come back as GameEvents with unique IDs. The
// events are counted in Prometheus, the session is persisted, and the events
// are handed to the publisher.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithLogger(logger),
//		service.WithPublisher(hub),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, err = gameService.Begin(ctx, info.ID)
//	result, err := gameService.Move(ctx, info.ID, engine.Cell{Row: 2, Col: 3})
package service
