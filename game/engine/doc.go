// Package engine provides the core game logic for the tile merge game.
//
// The engine package implements the game mechanics including:
//   - The Board grid with stable tile identities
//   - Directional slide, merge and compaction of every line
//   - Random tile spawning from an injected random source
//   - Game over and victory detection
//   - Session-level score, best tile and status tracking
//   - Configuration loading and validation
//
// Core Types:
//
// ApplyMove is the pure grid operation: given a Board, a Direction, a
// RandomSource and a GameConfig it mutates the board and returns a MoveResult
// describing every move, merge and spawn. GameEngine wraps a board with the
// session state (score, best tile, status, history) and is driven only by
// those results.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//
//	gameEngine, err := engine.NewEngine(config, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameEngine.Move(engine.Left)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.ScoreDelta, gameEngine.GetState().Board)
//
// Game Rules:
//
// Each move slides every tile toward one wall. Two equal tiles that meet
// merge into one of double value, and a tile merges at most once per move.
// After any move that changed the board a 2 (or sometimes a 4) appears on a
// random empty cell. The game is won when a tile reaches the winning value
// and is over when the board is full with no equal neighbours.
//
// Determinism:
//
// Given the same starting board and the same random stream, a sequence of
// moves always produces the same boards and results. SeededSource can save
// and restore its position so persisted games continue identically.
package engine
