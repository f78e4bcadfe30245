package service

import (
	"time"

	"github.com/wricardo/merge2048/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"` // config id used to create the session
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Result    *engine.MoveResult `json:"result"`
	Events    []GameEvent        `json:"events,omitempty"`
	Step      *StepInfo          `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // game_over|victory|invalid_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`
	StartBest  int `json:"start_best"`
	EndBest    int `json:"end_best"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	Victory       bool               `json:"victory"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []string           `json:"possible_moves,omitempty"`
	LastResult    *engine.MoveResult `json:"last_result,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx        int                `json:"idx"`
	Dir        string             `json:"dir"`
	Changed    bool               `json:"changed"`
	ScoreDelta int                `json:"score_delta"`
	Merges     int                `json:"merges"`
	Spawned    *engine.SpawnEvent `json:"spawned,omitempty"`
	MaxTile    int                `json:"max_tile"`
	Victory    bool               `json:"victory,omitempty"`
	GameOver   bool               `json:"game_over,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "move", "merge", "spawn", "no_move", "new_best", "victory", "game_over", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// CellInfo describes a single cell for inspection
type CellInfo struct {
	Position           engine.Position `json:"position"`
	Empty              bool            `json:"empty"`
	Value              int             `json:"value,omitempty"`
	TileID             engine.TileID   `json:"tile_id,omitempty"`
	Rank               int             `json:"rank,omitempty"` // log2 of the value
	MergeableNeighbors int             `json:"mergeable_neighbors"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename          string  `json:"filename"`
	ConfigID          string  `json:"config_id"` // The identifier to use for session creation
	Name              string  `json:"name"`      // Display name
	Description       string  `json:"description"`
	BoardSize         int     `json:"board_size"`
	WinningValue      int     `json:"winning_value"`
	Spawn4Probability float64 `json:"spawn_4_probability"`
	ContinueAfterWin  bool    `json:"continue_after_win"`
	DebugTools        bool    `json:"debug_tools"`
}
