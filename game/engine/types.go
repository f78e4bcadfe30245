package engine

// Direction is a player move command
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every move in a fixed order
var Directions = []Direction{Up, Down, Left, Right}

// Status is the session-level play status
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusEnded   Status = "ended"
)

const (
	// Validation constants
	MinBoardSize     = 2
	MaxBoardSize     = 16
	MinWinningValue  = 4
	MinTileValue     = 2
	MaxBulkMoves     = 50
	MaxHistoryLength = 10000

	// Defaults
	DefaultBoardSize         = 4
	DefaultWinningValue      = 2048
	DefaultSpawn4Probability = 10.0
	DefaultInitialTileCount  = 2

	WebSocketBufferSize = 256
)

// TileID identifies a tile for its whole lifetime on a board. Zero means no tile.
type TileID uint64

// Position represents row/column coordinates, row 0 is the top row
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell is a single grid cell; Value 0 means empty
type Cell struct {
	Value int    `json:"value,omitempty"`
	ID    TileID `json:"id,omitempty"`
}

// Empty reports whether no tile occupies the cell
func (c Cell) Empty() bool {
	return c.Value == 0
}

// Messages holds the player-facing texts of a game configuration
type Messages struct {
	Welcome     string `json:"welcome"`
	Victory     string `json:"victory"`
	GameOver    string `json:"game_over"`
	NoMove      string `json:"no_move"`
	ScoreStatus string `json:"score_status"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	BoardSize         int      `json:"board_size"`
	WinningValue      int      `json:"winning_value"`
	Spawn4Probability float64  `json:"spawn_4_probability"`
	InitialTileCount  int      `json:"initial_tile_count"`
	ContinueAfterWin  bool     `json:"continue_after_win"`
	DebugTools        bool     `json:"debug_tools"`
	Messages          Messages `json:"messages"`
}

// MoveEvent records a surviving tile sliding to a new cell
type MoveEvent struct {
	TileID TileID   `json:"tile_id"`
	From   Position `json:"from"`
	To     Position `json:"to"`
}

// MergeEvent records one tile absorbing another
type MergeEvent struct {
	SurvivorID    TileID   `json:"survivor_id"`
	SurvivorValue int      `json:"survivor_value"`
	AbsorbedID    TileID   `json:"absorbed_id"`
	AbsorbedFrom  Position `json:"absorbed_from"`
	At            Position `json:"at"`
}

// SpawnEvent records a new tile appearing on the board
type SpawnEvent struct {
	TileID TileID   `json:"tile_id"`
	Value  int      `json:"value"`
	At     Position `json:"at"`
}

// MoveResult describes everything a single move did to the board
type MoveResult struct {
	Direction   Direction    `json:"direction"`
	ScoreDelta  int          `json:"score_delta"`
	Changed     bool         `json:"changed"`
	MergeEvents []MergeEvent `json:"merge_events"`
	MoveEvents  []MoveEvent  `json:"move_events"`
	SpawnEvents []SpawnEvent `json:"spawn_events"`
	GameOver    bool         `json:"game_over"`
	NewBestTile *int         `json:"new_best_tile,omitempty"`
	Victory     bool         `json:"victory"`
}

// GameState represents the complete session state
type GameState struct {
	Board      *Board `json:"board"`
	Score      int    `json:"score"`
	Best       int    `json:"best"`
	Status     Status `json:"status"`
	Victory    bool   `json:"victory"`
	GameOver   bool   `json:"game_over"`
	Message    string `json:"message"`
	ConfigName string `json:"config_name"`
	Seed       uint64 `json:"seed"`
	RNGState   []byte `json:"rng_state,omitempty"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
	LastResult    *MoveResult `json:"last_result,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     Direction   `json:"action"`
	Changed    bool        `json:"changed"`
	ScoreDelta int         `json:"score_delta"`
	Score      int         `json:"score"`
	Merges     int         `json:"merges"`
	Spawned    *SpawnEvent `json:"spawned,omitempty"`
	Timestamp  int64       `json:"timestamp"`
	MoveNumber int         `json:"move_number"`
}
