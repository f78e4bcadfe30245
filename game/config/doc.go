// Package config provides configuration management for the tile merge game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Validation through the engine's rules
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// The file name without .json is the config id used to create sessions.
// Each configuration defines:
//   - board_size, winning_value and initial_tile_count
//   - spawn_4_probability (percent chance a spawned tile is a 4)
//   - continue_after_win and debug_tools switches
//   - Player-facing messages (welcome, victory, game over, ...)
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("big")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When classic.json is absent the first valid config becomes the default,
// and an empty directory falls back to the built-in classic 4x4 game.
package config
