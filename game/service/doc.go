// Package service provides the business logic layer for the Blockfall game server.
//
// The service package implements:
//   - Multi-session game management
//   - Intent dispatch, single and batched
//   - The per-session gravity driver lifecycle
//   - Change notification to websocket spectators and the event bus
//   - Placement suggestions backed by the autoplay planner
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game preset loading and validation.
// Notifier receives every state change, including ticks issued by the driver.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and gravity driver; every
// call into the engine is serialized by the session lock, so REST calls, MCP
// tools and driver ticks never interleave inside a single operation.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, hub)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal().Err(err).Msg("create session")
//	}
//
//	// Apply intents
//	result, err := gameService.Act(ctx, sessionInfo.ID, engine.IntentHardDrop)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// game state. Sessions are transient: they live in memory and disappear on
// delete, expiry, or restart of the server.
package service
