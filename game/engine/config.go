package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfiguration)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfiguration)
	}

	// Validate board size
	if config.BoardSize < MinBoardSize || config.BoardSize > MaxBoardSize {
		return fmt.Errorf("%w: board_size must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinBoardSize, MaxBoardSize, config.BoardSize)
	}

	// Validate winning value
	if config.WinningValue < MinWinningValue || config.WinningValue&(config.WinningValue-1) != 0 {
		return fmt.Errorf("%w: winning_value must be a power of two >= %d, got %d",
			ErrInvalidConfiguration, MinWinningValue, config.WinningValue)
	}
	if limit := MaxReachableTile(config.BoardSize); limit > 0 && config.WinningValue > limit {
		return fmt.Errorf("%w: winning_value %d is unreachable on a %dx%d board (max tile %d)",
			ErrInvalidConfiguration, config.WinningValue, config.BoardSize, config.BoardSize, limit)
	}

	// Validate spawn settings
	if config.Spawn4Probability < 0 || config.Spawn4Probability > 100 {
		return fmt.Errorf("%w: spawn_4_probability must be between 0 and 100, got %g",
			ErrInvalidConfiguration, config.Spawn4Probability)
	}
	cells := config.BoardSize * config.BoardSize
	if config.InitialTileCount < 1 || config.InitialTileCount > cells {
		return fmt.Errorf("%w: initial_tile_count must be between 1 and %d, got %d",
			ErrInvalidConfiguration, cells, config.InitialTileCount)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidConfiguration)
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("%w: messages.victory is required", ErrInvalidConfiguration)
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("%w: messages.game_over is required", ErrInvalidConfiguration)
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("%w: messages.victory must contain %%d for the winning tile", ErrInvalidConfiguration)
	}
	if config.Messages.ScoreStatus != "" && !strings.Contains(config.Messages.ScoreStatus, "%d") {
		return fmt.Errorf("%w: messages.score_status must contain %%d for the score", ErrInvalidConfiguration)
	}

	return nil
}

// MaxReachableTile returns the largest tile a size x size board can hold,
// 2^(cells+1), or 0 when that does not fit in an int
func MaxReachableTile(size int) int {
	exp := size*size + 1
	if exp >= 62 {
		return 0
	}
	return 1 << exp
}

// UnmarshalJSON decodes a configuration, defaulting spawn_4_probability only
// when the key is absent. An explicit 0 disables 4-spawns.
func (c *GameConfig) UnmarshalJSON(data []byte) error {
	type plain GameConfig
	var raw struct {
		plain
		Spawn4Probability *float64 `json:"spawn_4_probability"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = GameConfig(raw.plain)
	c.Spawn4Probability = DefaultSpawn4Probability
	if raw.Spawn4Probability != nil {
		c.Spawn4Probability = *raw.Spawn4Probability
	}
	return nil
}

// ApplyDefaults fills zero-valued numeric settings. Spawn4Probability is left
// alone since 0 is a meaningful setting; decoding already defaults a missing key.
func ApplyDefaults(config *GameConfig) {
	if config.BoardSize == 0 {
		config.BoardSize = DefaultBoardSize
	}
	if config.WinningValue == 0 {
		config.WinningValue = DefaultWinningValue
	}
	if config.InitialTileCount == 0 {
		config.InitialTileCount = DefaultInitialTileCount
	}
}

// DefaultGameConfig returns the classic 4x4 game
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:              "Classic 2048",
		Description:       "The classic 4x4 board, reach 2048 to win",
		BoardSize:         DefaultBoardSize,
		WinningValue:      DefaultWinningValue,
		Spawn4Probability: DefaultSpawn4Probability,
		InitialTileCount:  DefaultInitialTileCount,
		Messages: Messages{
			Welcome:     "Slide the tiles and merge equal numbers. Reach 2048!",
			Victory:     "You reached %d! You win!",
			GameOver:    "No moves left. Game over!",
			NoMove:      "Nothing moved in that direction",
			ScoreStatus: "Score: %d",
		},
	}
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", filepath.Base(configPath), err)
	}
	return config, nil
}

// ParseGameConfig decodes, defaults and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	ApplyDefaults(&config)

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
