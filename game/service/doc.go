// Package service provides the business logic layer for the tile merge game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup by config id
//   - Move processing, bulk moves and move history
//   - Debug tools (cell inspection and tile placement)
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine with an independent board
// and random stream; the service serializes mutations so an engine is never
// driven concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//
// Errors:
//
// Lookups that miss wrap ErrNotFound, duplicate creations wrap ErrConflict.
// Engine errors (invalid direction, illegal state, debug tools disabled)
// pass through unchanged so callers can match them with errors.Is.
package service
