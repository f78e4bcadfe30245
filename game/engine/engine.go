package engine

import (
	"fmt"
	"slices"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Snapshot() *GameState
	SetState(state *GameState) error
	Reset() (*GameState, error)
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetBest() int
	GetStatus() Status

	// Movement operations
	Move(dir Direction) (*MoveResult, error)
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Inspection and debug tools
	GetCell(pos Position) (Cell, error)
	PlaceTile(pos Position, value int) (*MoveResult, error)
	SpawnRandom() (*MoveResult, error)
}

// GameEngine owns one game session: the board, score, best tile, status and
// the random stream. It is not safe for concurrent use.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *SeededSource
}

// NewEngine creates a new game engine with the provided configuration and seed
func NewEngine(config *GameConfig, seed uint64) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		rng:    NewRandomSource(seed),
	}
	state, err := engine.newGameState()
	if err != nil {
		return nil, err
	}
	engine.state = state
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults(seed uint64) *GameEngine {
	engine, err := NewEngine(DefaultGameConfig(), seed)
	if err != nil {
		panic(fmt.Sprintf("default config rejected: %v", err))
	}
	return engine
}

// newGameState builds a fresh board with its initial spawns
func (e *GameEngine) newGameState() (*GameState, error) {
	board, _, err := NewGameBoard(e.config, e.rng)
	if err != nil {
		return nil, err
	}

	state := &GameState{
		Board:        board,
		Best:         board.MaxValue(),
		Status:       StatusPlaying,
		Message:      e.config.Messages.Welcome,
		ConfigName:   e.config.Name,
		Seed:         e.rng.Seed(),
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	if IsGameOver(board) {
		state.GameOver = true
		state.Status = StatusEnded
		state.Message = e.config.Messages.GameOver
	}
	e.refresh(state)
	return state, nil
}

// GetState returns the current game state. The pointer is live: later moves
// mutate it, so callers that hand state to other goroutines use Snapshot.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the current state that later moves, resets
// and placements leave untouched.
func (e *GameEngine) Snapshot() *GameState {
	src := e.state
	if src == nil {
		return nil
	}

	state := *src
	if src.Board != nil {
		state.Board = src.Board.Clone()
	}
	state.RNGState = slices.Clone(src.RNGState)
	state.MoveHistory = slices.Clone(src.MoveHistory)
	state.CurrentMoves = slices.Clone(src.CurrentMoves)
	state.PossibleMoves = slices.Clone(src.PossibleMoves)
	if src.LastResult != nil {
		last := *src.LastResult
		last.MergeEvents = slices.Clone(last.MergeEvents)
		last.MoveEvents = slices.Clone(last.MoveEvents)
		last.SpawnEvents = slices.Clone(last.SpawnEvents)
		state.LastResult = &last
	}
	return &state
}

// SetState replaces the game state (used for persistence loading). The board
// must match the configured size and the rng stream resumes from RNGState.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrIllegalState)
	}
	if state.Board == nil {
		return fmt.Errorf("%w: state has no board", ErrIllegalState)
	}
	if state.Board.Size() != e.config.BoardSize {
		return fmt.Errorf("%w: board is %dx%d but config expects %d",
			ErrInvalidConfiguration, state.Board.Size(), state.Board.Size(), e.config.BoardSize)
	}
	if err := state.Board.Validate(); err != nil {
		return err
	}

	rng, err := RestoreRandomSource(state.Seed, state.RNGState)
	if err != nil {
		return err
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}
	if state.Status == "" {
		state.Status = StatusPlaying
	}

	e.rng = rng
	e.state = state
	e.refresh(state)
	return nil
}

// Reset starts a new board. Cumulative history and the random stream carry on.
func (e *GameEngine) Reset() (*GameState, error) {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	state, err := e.newGameState()
	if err != nil {
		return nil, err
	}

	// Restore cumulative history and totals; clear only the current segment
	state.MoveHistory = prevHistory
	state.TotalMoves = prevTotal
	e.state = state
	return e.state, nil
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the winning tile has been reached
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetBest returns the highest tile reached this game
func (e *GameEngine) GetBest() int {
	return e.state.Best
}

// GetStatus returns the play status
func (e *GameEngine) GetStatus() Status {
	return e.state.Status
}

// acceptsMoves reports whether the session can still take commands
func (e *GameEngine) acceptsMoves() error {
	switch e.state.Status {
	case StatusEnded:
		return fmt.Errorf("%w: game is over, reset to play again", ErrIllegalState)
	case StatusWon:
		if !e.config.ContinueAfterWin {
			return fmt.Errorf("%w: game already won, reset to play again", ErrIllegalState)
		}
	}
	return nil
}

// Move applies one direction command to the board
func (e *GameEngine) Move(dir Direction) (*MoveResult, error) {
	if err := e.acceptsMoves(); err != nil {
		return nil, err
	}

	result, err := ApplyMove(e.state.Board, dir, e.rng, e.config)
	if err != nil {
		return nil, err
	}

	e.applyResult(result)
	e.AddMoveToHistory(result)
	e.refresh(e.state)
	return result, nil
}

// applyResult folds a move result into the session state. Unchanged moves
// cause no transition.
func (e *GameEngine) applyResult(result *MoveResult) {
	state := e.state
	state.LastResult = result

	if !result.Changed {
		state.Message = e.config.Messages.NoMove
		return
	}

	state.Score += result.ScoreDelta
	if result.NewBestTile != nil && *result.NewBestTile > state.Best {
		state.Best = *result.NewBestTile
	}
	state.Message = e.scoreMessage()

	if result.Victory && !state.Victory {
		state.Victory = true
		state.Message = fmt.Sprintf(e.config.Messages.Victory, e.config.WinningValue)
		if !e.config.ContinueAfterWin {
			state.Status = StatusWon
		}
	}

	if result.GameOver {
		state.GameOver = true
		state.Status = StatusEnded
		state.Message = e.config.Messages.GameOver
	}
}

func (e *GameEngine) scoreMessage() string {
	if e.config.Messages.ScoreStatus == "" {
		return ""
	}
	return fmt.Sprintf(e.config.Messages.ScoreStatus, e.state.Score)
}

// refresh recomputes derived views and snapshots the rng position
func (e *GameEngine) refresh(state *GameState) {
	state.PossibleMoves = PossibleMoves(state.Board)
	if raw, err := e.rng.State(); err == nil {
		state.RNGState = raw
	}
}

// CanMove checks whether moving in dir would change the board
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.acceptsMoves() != nil {
		return false
	}
	return CanMove(e.state.Board, dir)
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	if e.acceptsMoves() != nil {
		return nil
	}
	return PossibleMoves(e.state.Board)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	state, err := e.newGameState()
	if err != nil {
		e.config = prev
		return err
	}
	e.state = state
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetCell returns a single cell for point inspection
func (e *GameEngine) GetCell(pos Position) (Cell, error) {
	return e.state.Board.Get(pos)
}

// PlaceTile drops a tile of the chosen value on an empty cell (debug tool)
func (e *GameEngine) PlaceTile(pos Position, value int) (*MoveResult, error) {
	if !e.config.DebugTools {
		return nil, ErrDebugToolsDisabled
	}
	bestBefore := e.state.Board.MaxValue()
	ev, err := PlaceTile(e.state.Board, pos, value)
	if err != nil {
		return nil, err
	}
	return e.finishPlacement(ev, bestBefore), nil
}

// SpawnRandom spawns one tile using the normal spawn rule (debug tool)
func (e *GameEngine) SpawnRandom() (*MoveResult, error) {
	if !e.config.DebugTools {
		return nil, ErrDebugToolsDisabled
	}
	bestBefore := e.state.Board.MaxValue()
	ev, err := Spawn(e.state.Board, e.rng, e.config)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		result := &MoveResult{
			MergeEvents: []MergeEvent{},
			MoveEvents:  []MoveEvent{},
			SpawnEvents: []SpawnEvent{},
			GameOver:    IsGameOver(e.state.Board),
			Victory:     e.state.Board.MaxValue() >= e.config.WinningValue,
		}
		e.state.LastResult = result
		return result, nil
	}
	return e.finishPlacement(*ev, bestBefore), nil
}

// finishPlacement reports a debug placement like a move that only spawned
func (e *GameEngine) finishPlacement(ev SpawnEvent, bestBefore int) *MoveResult {
	board := e.state.Board
	result := &MoveResult{
		Changed:     true,
		MergeEvents: []MergeEvent{},
		MoveEvents:  []MoveEvent{},
		SpawnEvents: []SpawnEvent{ev},
		GameOver:    IsGameOver(board),
		Victory:     board.MaxValue() >= e.config.WinningValue,
	}
	if best := board.MaxValue(); best > bestBefore {
		result.NewBestTile = &best
	}
	e.applyResult(result)
	e.refresh(e.state)
	return result
}

// AddMoveToHistory adds a move to the game's move history
func (e *GameEngine) AddMoveToHistory(result *MoveResult) {
	gs := e.state
	entry := MoveHistoryEntry{
		Action:     result.Direction,
		Changed:    result.Changed,
		ScoreDelta: result.ScoreDelta,
		Score:      gs.Score,
		Merges:     len(result.MergeEvents),
		Timestamp:  time.Now().Unix(),
		MoveNumber: gs.TotalMoves + 1,
	}
	if len(result.SpawnEvents) > 0 {
		spawned := result.SpawnEvents[0]
		entry.Spawned = &spawned
	}

	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	if len(gs.MoveHistory) > MaxHistoryLength {
		gs.MoveHistory = gs.MoveHistory[len(gs.MoveHistory)-MaxHistoryLength:]
	}
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

// BulkMove executes moves in sequence until one fails or the game stops
// accepting commands. Unchanged moves do not stop the sequence.
func (e *GameEngine) BulkMove(moves []Direction) ([]*MoveResult, error) {
	results := make([]*MoveResult, 0, len(moves))

	for _, dir := range moves {
		if e.acceptsMoves() != nil {
			break
		}

		result, err := e.Move(dir)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}
