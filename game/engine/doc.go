// Package engine provides the core rules for the Blockfall falling-block game.
//
// The engine package implements the game mechanics including:
//   - The fixed 10x20 board and the seven-piece catalog
//   - Collision detection and clockwise rotation
//   - Merging landed pieces, clearing full rows and scoring
//   - Spawning pieces and the running/paused/game-over state machine
//   - Preset configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the read-only snapshot returned to
// callers, Outcome describes what a single operation changed, and GameConfig
// is a preset loaded from JSON.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drive the game
//	gameEngine.MoveLeft()
//	outcome := gameEngine.Tick()
//	state := gameEngine.GetState()
//
// Concurrency:
//
// A GameEngine is not safe for concurrent use. It never blocks and owns no
// timers; the caller schedules Tick at Interval() cadence and serializes all
// calls into one engine.
package engine
