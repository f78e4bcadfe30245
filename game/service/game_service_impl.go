package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/merge2048/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *slog.Logger

	// mu serialises every session operation; even lookups touch the access
	// time, and returned states are snapshots taken while it is held
	mu sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.Default().With("component", "service"),
	}
}

// CreateSession creates a new game session. A nil seed picks a random one.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	configID := configName
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: '%s' (available: %s)", err, configName, strings.Join(s.configIDs(), ", "))
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	sessionSeed := rand.Uint64()
	if seed != nil {
		sessionSeed = *seed
	}

	// Let session manager generate the ID
	session, err := s.sessions.Create("", configID, config, sessionSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", session.ID, "config", configID, "seed", sessionSeed)
	return sessionInfo(session), nil
}

func (s *gameServiceImpl) configIDs() []string {
	available, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return ids
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(session), nil
}

// getSession looks a session up and touches its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Debug("failed to update last access", "session", sessionID, "error", err)
	}
	return sess, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("reset failed: %w", err)
		}
		events = append(events, resetEvent())
	}

	wasVictory := sess.Engine.IsVictory()
	res, err := sess.Engine.Move(dir)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.Snapshot()

	result := &MoveResult{
		Success:   res.Changed,
		GameState: state,
		Message:   state.Message,
		Result:    res,
		Events:    append(events, moveEvents(res, state, wasVictory)...),
		Step:      stepInfo(1, dir, res, state),
	}

	s.persist(sessionID, "move")
	return result, nil
}

// BulkMove executes multiple moves in sequence. Unchanged moves do not stop
// the sequence; a finished game or an unknown direction does.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Handle reset
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("reset failed: %w", err)
		}
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartScore = start.Score
	result.StartBest = start.Best

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if code := stopCode(sess.Engine.GetStatus()); code != "" {
			result.StopReasonCode = code
			result.StoppedReason = fmt.Sprintf("game finished (%s) before move %d", code, i+1)
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StopReasonCode = "invalid_direction"
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StoppedOnMove = i + 1
			break
		}

		wasVictory := sess.Engine.IsVictory()
		res, err := sess.Engine.Move(dir)
		if err != nil {
			return nil, err
		}
		state := sess.Engine.GetState()

		result.MovesExecuted++
		result.Events = append(result.Events, moveEvents(res, state, wasVictory)...)
		result.Steps = append(result.Steps, *stepInfo(i+1, dir, res, state))
		result.LastResult = res
	}

	end := sess.Engine.Snapshot()
	result.GameState = end
	result.EndScore = end.Score
	result.EndBest = end.Best
	result.ScoreDelta = end.Score - result.StartScore
	result.GameOver = end.GameOver
	result.Victory = end.Victory
	result.Message = end.Message

	// Ended on the last executed move without an explicit stop
	if result.StopReasonCode == "" {
		result.StopReasonCode = stopCode(end.Status)
	}

	for _, dir := range sess.Engine.GetPossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, string(dir))
	}

	s.persist(sessionID, "bulk_move")
	return result, nil
}

// stopCode maps a status that no longer accepts moves to a reason code
func stopCode(status engine.Status) string {
	switch status {
	case engine.StatusEnded:
		return "game_over"
	case engine.StatusWon:
		return "victory"
	}
	return ""
}

// Reset resets a game session to a fresh board
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("reset failed: %w", err)
	}

	s.persist(sessionID, "reset")
	return sess.Engine.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetCell describes one cell of the session's board
func (s *gameServiceImpl) GetCell(ctx context.Context, sessionID string, pos engine.Position) (*CellInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	cell, err := sess.Engine.GetCell(pos)
	if err != nil {
		return nil, err
	}

	info := &CellInfo{
		Position: pos,
		Empty:    cell.Empty(),
		Value:    cell.Value,
		TileID:   cell.ID,
		Rank:     engine.TileRank(cell.Value),
	}
	if !cell.Empty() {
		board := sess.Engine.GetState().Board
		for _, n := range []engine.Position{
			{Row: pos.Row - 1, Col: pos.Col},
			{Row: pos.Row + 1, Col: pos.Col},
			{Row: pos.Row, Col: pos.Col - 1},
			{Row: pos.Row, Col: pos.Col + 1},
		} {
			if other, err := board.Get(n); err == nil && other.Value == cell.Value {
				info.MergeableNeighbors++
			}
		}
	}
	return info, nil
}

// PlaceTile drops a tile on an empty cell when the config enables debug tools
func (s *gameServiceImpl) PlaceTile(ctx context.Context, sessionID string, pos engine.Position, value int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	wasVictory := sess.Engine.IsVictory()
	res, err := sess.Engine.PlaceTile(pos, value)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.Snapshot()

	s.persist(sessionID, "place_tile")
	return &MoveResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Result:    res,
		Events:    moveEvents(res, state, wasVictory),
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "op", op, "error", err)
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to a new board",
		Timestamp: time.Now(),
	}
}

// moveEvents turns a move result into the event list reported to clients
func moveEvents(res *engine.MoveResult, state *engine.GameState, wasVictory bool) []GameEvent {
	now := time.Now()
	if !res.Changed {
		return []GameEvent{{
			Type:      "no_move",
			Message:   state.Message,
			Timestamp: now,
		}}
	}

	events := []GameEvent{}
	if len(res.MoveEvents) > 0 || res.Direction != "" {
		events = append(events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s: %d tiles slid, %d merged", res.Direction, len(res.MoveEvents), len(res.MergeEvents)),
			Timestamp: now,
		})
	}
	for _, m := range res.MergeEvents {
		at := m.At
		events = append(events, GameEvent{
			Type:      "merge",
			Message:   fmt.Sprintf("Merged into %d at (%d,%d)", m.SurvivorValue, at.Row, at.Col),
			Timestamp: now,
			Position:  &at,
			Value:     m.SurvivorValue,
		})
	}
	for _, sp := range res.SpawnEvents {
		at := sp.At
		events = append(events, GameEvent{
			Type:      "spawn",
			Message:   fmt.Sprintf("New %d at (%d,%d)", sp.Value, at.Row, at.Col),
			Timestamp: now,
			Position:  &at,
			Value:     sp.Value,
		})
	}
	if res.NewBestTile != nil {
		events = append(events, GameEvent{
			Type:      "new_best",
			Message:   fmt.Sprintf("New best tile: %d", *res.NewBestTile),
			Timestamp: now,
			Value:     *res.NewBestTile,
		})
	}
	if res.Victory && !wasVictory {
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   state.Message,
			Timestamp: now,
			Value:     state.Best,
		})
	}
	if res.GameOver {
		events = append(events, GameEvent{
			Type:      "game_over",
			Message:   state.Message,
			Timestamp: now,
			Value:     state.Score,
		})
	}
	return events
}

func stepInfo(idx int, dir engine.Direction, res *engine.MoveResult, state *engine.GameState) *StepInfo {
	step := &StepInfo{
		Idx:        idx,
		Dir:        string(dir),
		Changed:    res.Changed,
		ScoreDelta: res.ScoreDelta,
		Merges:     len(res.MergeEvents),
		MaxTile:    state.Board.MaxValue(),
		Victory:    res.Victory,
		GameOver:   res.GameOver,
	}
	if len(res.SpawnEvents) > 0 {
		spawned := res.SpawnEvents[0]
		step.Spawned = &spawned
	}
	return step
}
