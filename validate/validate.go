// Command validate provides a small CLI that validates game configuration JSON
// files in a configs directory (../configs by default). It checks:
//   - JSON structure, unknown fields and required fields
//   - Board size, winning value and spawn probability ranges
//   - That the winning tile fits on the board at all
//   - Required messages and their %d placeholders
//   - Playability: a fresh seeded game starts with the configured tiles and a legal move
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/merge2048/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
// Unlike the engine it reports every problem it finds, not only the first.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	// strictConfig drops GameConfig's decoder so unknown fields are still reported
	type strictConfig engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&strictConfig{}); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	engine.ApplyDefaults(&config)

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	// Board and target
	if config.BoardSize < engine.MinBoardSize || config.BoardSize > engine.MaxBoardSize {
		result.fail("board_size must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, config.BoardSize)
	}
	if config.WinningValue < engine.MinWinningValue || config.WinningValue&(config.WinningValue-1) != 0 {
		result.fail("winning_value must be a power of two >= %d, got %d", engine.MinWinningValue, config.WinningValue)
	} else if limit := engine.MaxReachableTile(config.BoardSize); limit > 0 && config.WinningValue > limit {
		result.fail("winning_value %d cannot be reached on a %dx%d board (max tile %d)",
			config.WinningValue, config.BoardSize, config.BoardSize, limit)
	}

	// Spawning
	if config.Spawn4Probability < 0 || config.Spawn4Probability > 100 {
		result.fail("spawn_4_probability must be between 0 and 100, got %g", config.Spawn4Probability)
	}
	if cells := config.BoardSize * config.BoardSize; config.InitialTileCount < 1 || config.InitialTileCount > cells {
		result.fail("initial_tile_count must be between 1 and %d, got %d", cells, config.InitialTileCount)
	}

	// Messages
	required := map[string]string{
		"welcome":   config.Messages.Welcome,
		"victory":   config.Messages.Victory,
		"game_over": config.Messages.GameOver,
	}
	for _, key := range []string{"welcome", "victory", "game_over"} {
		if required[key] == "" {
			result.fail("Missing required message: %s", key)
		}
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		result.fail("messages.victory must contain %%d for the winning tile")
	}
	if config.Messages.ScoreStatus != "" && !strings.Contains(config.Messages.ScoreStatus, "%d") {
		result.fail("messages.score_status must contain %%d for the score")
	}

	// Everything above should agree with the engine; anything it still rejects is reported as is
	if result.Valid {
		if err := engine.ValidateGameConfig(&config); err != nil {
			result.fail("%v", err)
		}
	}

	if result.Valid {
		playable := validatePlayability(&config)
		result.Valid = playable.Valid
		result.Errors = append(result.Errors, playable.Errors...)
	}

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Board: %dx%d", config.BoardSize, config.BoardSize)
		result.info("Goal: %d", config.WinningValue)
		result.info("4-spawn chance: %g%%", config.Spawn4Probability)
		if config.ContinueAfterWin {
			result.info("Continues after win")
		}
		if config.DebugTools {
			result.info("Debug tools enabled")
		}
	}

	return result
}

// validatePlayability starts a few seeded games and checks each opens with the
// configured number of tiles and at least one legal move.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	const seeds = 5
	for seed := uint64(1); seed <= seeds; seed++ {
		e, err := engine.NewEngine(config, seed)
		if err != nil {
			result.fail("Cannot start a game: %v", err)
			return result
		}

		state := e.GetState()
		tiles := 0
		for _, count := range engine.TileHistogram(state.Board) {
			tiles += count
		}
		if tiles != config.InitialTileCount {
			result.fail("Seed %d: expected %d starting tiles, got %d", seed, config.InitialTileCount, tiles)
		}
		if state.GameOver || len(e.GetPossibleMoves()) == 0 {
			result.fail("Seed %d: game is over before the first move", seed)
		}
	}

	if result.Valid {
		result.info("Playability: %d seeded games start with a legal move", seeds)
	}
	return result
}

// main scans the configs directory for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
