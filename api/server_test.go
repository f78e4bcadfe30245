package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/merge2048/game/config"
	"github.com/wricardo/merge2048/game/engine"
	"github.com/wricardo/merge2048/game/service"
	"github.com/wricardo/merge2048/transport/websocket"
)

var errMockNotFound = fmt.Errorf("session %w", service.ErrNotFound)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	GetCellFunc        func(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error)
	PlaceTileFunc      func(ctx context.Context, sessionID string, pos engine.Position, value int) (*service.MoveResult, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, seed)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}, Page: opts.Page, PageSize: opts.Limit, TotalPages: 1}, nil
}

func (m *MockGameService) GetCell(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error) {
	if m.GetCellFunc != nil {
		return m.GetCellFunc(ctx, sessionID, pos)
	}
	return &service.CellInfo{Position: pos, Empty: true}, nil
}

func (m *MockGameService) PlaceTile(ctx context.Context, sessionID string, pos engine.Position, value int) (*service.MoveResult, error) {
	if m.PlaceTileFunc != nil {
		return m.PlaceTileFunc(ctx, sessionID, pos, value)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{Name: configName, Description: "Test config"}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// recordingHub captures broadcasts instead of sending them
type recordingHub struct {
	mu     sync.Mutex
	states []string
	events []string
	last   *engine.MoveResult
}

func (h *recordingHub) BroadcastToSession(sessionID string, state *engine.GameState, result *engine.MoveResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, sessionID)
	h.last = result
}

func (h *recordingHub) BroadcastEvent(sessionID, event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event+":"+sessionID)
}

func (h *recordingHub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	w.WriteHeader(http.StatusSwitchingProtocols)
}

// Test helpers
func setupTestServer(mockService *MockGameService) (*Server, *recordingHub) {
	hub := &recordingHub{}
	return NewServer(mockService, hub), hub
}

func makeRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %s)", err, w.Body.String())
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errMockNotFound, http.StatusNotFound},
		{config.ErrConfigNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", engine.ErrInvalidDirection), http.StatusBadRequest},
		{&engine.PositionError{Pos: engine.Position{Row: 9}, Size: 4}, http.StatusBadRequest},
		{engine.ErrCellOccupied, http.StatusBadRequest},
		{engine.ErrInvalidTileValue, http.StatusBadRequest},
		{engine.ErrInvalidConfiguration, http.StatusBadRequest},
		{config.ErrInvalidConfig, http.StatusBadRequest},
		{engine.ErrIllegalState, http.StatusConflict},
		{fmt.Errorf("dup (%w)", service.ErrConflict), http.StatusConflict},
		{engine.ErrDebugToolsDisabled, http.StatusForbidden},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	seed := uint64(42)

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, s *uint64) (*service.SessionInfo, error) {
					if configName != "" || s != nil {
						t.Errorf("expected empty config and nil seed, got %q %v", configName, s)
					}
					return &service.SessionInfo{ID: "sess-123", ConfigName: "classic"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "config id and seed",
			requestBody: map[string]any{"config_id": "big", "seed": seed},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, s *uint64) (*service.SessionInfo, error) {
					if configName != "big" {
						t.Errorf("Expected config 'big', got %s", configName)
					}
					if s == nil || *s != 42 {
						t.Errorf("Expected seed 42, got %v", s)
					}
					return &service.SessionInfo{ID: "sess-456", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "config_name alias",
			requestBody: map[string]any{"config_name": "tiny"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, s *uint64) (*service.SessionInfo, error) {
					if configName != "tiny" {
						t.Errorf("Expected config 'tiny', got %s", configName)
					}
					return &service.SessionInfo{ID: "sess-789", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "unknown config",
			requestBody: map[string]any{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, s *uint64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load config: %w", config.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, s *uint64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server, _ := setupTestServer(mockService)
			w := serve(server, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSession_BadBody(t *testing.T) {
	server, _ := setupTestServer(&MockGameService{})
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{"))
	w := serve(server, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Hour)},
				{ID: "b", CreatedAt: base.Add(time.Hour), LastAccessedAt: base.Add(time.Hour)},
				{ID: "c", CreatedAt: base.Add(2 * time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
			}, nil
		},
	}
	server, _ := setupTestServer(mock)

	tests := []struct {
		query   string
		wantIDs []string
		total   int
	}{
		{"", []string{"a", "c", "b"}, 3},
		{"?sort=created&order=asc", []string{"a", "b", "c"}, 3},
		{"?sort=created", []string{"c", "b", "a"}, 3},
		{"?limit=2", []string{"a", "c"}, 3},
		{"?limit=0", []string{"a", "c", "b"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.total || resp.Count != len(tt.wantIDs) {
				t.Errorf("count/total = %d/%d, want %d/%d", resp.Count, resp.Total, len(tt.wantIDs), tt.total)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("position %d: got %s, want %s", i, resp.Sessions[i].ID, id)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, errMockNotFound
			}
			return &service.SessionInfo{ID: sessionID, ConfigName: "classic"}, nil
		},
	}
	server, _ := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp service.SessionInfo
	parseResponse(t, w, &resp)
	if resp.ID != "abc" {
		t.Errorf("Expected abc, got %s", resp.ID)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	mock := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return errMockNotFound
			}
			return nil
		},
	}
	server, hub := setupTestServer(mock)

	if w := serve(server, makeRequest("DELETE", "/api/sessions/abc", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if len(hub.events) != 1 || hub.events[0] != websocket.TypeSessionDeleted+":abc" {
		t.Errorf("expected session_deleted broadcast, got %v", hub.events)
	}

	if w := serve(server, makeRequest("DELETE", "/api/sessions/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		moveErr        error
		expectedStatus int
		broadcasts     int
	}{
		{"valid move", map[string]any{"direction": "left"}, nil, http.StatusOK, 1},
		{"move with reset", map[string]any{"direction": "up", "reset": true}, nil, http.StatusOK, 1},
		{"invalid direction", map[string]any{"direction": "sideways"}, fmt.Errorf("%w: sideways", engine.ErrInvalidDirection), http.StatusBadRequest, 0},
		{"game over", map[string]any{"direction": "down"}, fmt.Errorf("game is over: %w", engine.ErrIllegalState), http.StatusConflict, 0},
		{"missing session", map[string]any{"direction": "down"}, errMockNotFound, http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReset bool
			mock := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					gotReset = reset
					if tt.moveErr != nil {
						return nil, tt.moveErr
					}
					result := &engine.MoveResult{Direction: engine.Direction(direction), Changed: true, ScoreDelta: 8}
					return &service.MoveResult{
						Success:   true,
						GameState: &engine.GameState{Score: 8, Status: engine.StatusPlaying},
						Result:    result,
						Step:      &service.StepInfo{Idx: 1, Dir: direction, Changed: true, ScoreDelta: 8, MaxTile: 8},
					}, nil
				},
			}
			server, hub := setupTestServer(mock)

			w := serve(server, makeRequest("POST", "/api/sessions/sess-1/move", tt.requestBody))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if len(hub.states) != tt.broadcasts {
				t.Errorf("expected %d broadcasts, got %d", tt.broadcasts, len(hub.states))
			}
			if tt.name == "move with reset" && !gotReset {
				t.Error("Expected reset to be forwarded")
			}

			if w.Code == http.StatusOK {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if !resp.Success || resp.GameState.Score != 8 || resp.Result.ScoreDelta != 8 {
					t.Errorf("unexpected response %+v", resp)
				}
				if hub.last == nil || hub.last.ScoreDelta != 8 {
					t.Error("broadcast should carry the move result")
				}
			}
		})
	}
}

func TestMove_InvalidBody(t *testing.T) {
	server, _ := setupTestServer(&MockGameService{})
	req := httptest.NewRequest("POST", "/api/sessions/s/move", strings.NewReader("not json"))
	if w := serve(server, req); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestBulkMove(t *testing.T) {
	mock := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
			if len(moves) != 3 {
				t.Errorf("Expected 3 moves, got %d", len(moves))
			}
			return &service.BulkMoveResult{
				Success:        true,
				MovesExecuted:  2,
				RequestedMoves: 3,
				StopReasonCode: "game_over",
				GameState:      &engine.GameState{Status: engine.StatusEnded, GameOver: true},
				GameOver:       true,
				LastResult:     &engine.MoveResult{Direction: engine.Up, Changed: true, GameOver: true},
			}, nil
		},
	}
	server, hub := setupTestServer(mock)

	w := serve(server, makeRequest("POST", "/api/sessions/s/bulk-move", map[string]any{"moves": []string{"up", "up", "left"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	if resp.MovesExecuted != 2 || resp.StopReasonCode != "game_over" || !resp.GameOver {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(hub.states) != 1 || hub.last == nil || !hub.last.GameOver {
		t.Error("expected one broadcast carrying the last move")
	}
}

func TestReset(t *testing.T) {
	mock := &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "missing" {
				return nil, errMockNotFound
			}
			return &engine.GameState{Status: engine.StatusPlaying, TotalMoves: 12}, nil
		},
	}
	server, hub := setupTestServer(mock)

	w := serve(server, makeRequest("POST", "/api/sessions/s/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.TotalMoves != 12 {
		t.Errorf("unexpected state %+v", resp.State)
	}
	if len(hub.states) != 1 || hub.last != nil {
		t.Error("reset should broadcast a state without a move result")
	}

	if w := serve(server, makeRequest("POST", "/api/sessions/missing/reset", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mock := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			}
			server, _ := setupTestServer(mock)

			w := serve(server, makeRequest("GET", "/api/sessions/s/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("options = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	board, err := engine.NewBoardFromValues([][]int{{2, 2}, {0, 4}})
	if err != nil {
		t.Fatal(err)
	}
	mock := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{Board: board, Score: 4, Status: engine.StatusPlaying}, nil
		},
	}
	server, _ := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/s/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if !state.Board.Equal(board) {
		t.Errorf("board mismatch:\n%s", state.Board)
	}
}

func TestGetCell(t *testing.T) {
	var got engine.Position
	mock := &MockGameService{
		GetCellFunc: func(ctx context.Context, sessionID string, pos engine.Position) (*service.CellInfo, error) {
			got = pos
			if pos.Row > 3 {
				return nil, &engine.PositionError{Pos: pos, Size: 4}
			}
			return &service.CellInfo{Position: pos, Value: 8, Rank: 3}, nil
		},
	}
	server, _ := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/sessions/s/cells/1/2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got != (engine.Position{Row: 1, Col: 2}) {
		t.Errorf("unexpected position %+v", got)
	}
	var cell service.CellInfo
	parseResponse(t, w, &cell)
	if cell.Value != 8 || cell.Rank != 3 {
		t.Errorf("unexpected cell %+v", cell)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/s/cells/7/0", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out of bounds, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/sessions/s/cells/x/0", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for non-numeric route, got %d", w.Code)
	}
}

func TestPlaceTile(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		err            error
		expectedStatus int
	}{
		{"placed", map[string]any{"row": 0, "col": 1, "value": 64}, nil, http.StatusOK},
		{"missing coordinates", map[string]any{"value": 64}, nil, http.StatusBadRequest},
		{"debug disabled", map[string]any{"row": 0, "col": 0, "value": 2}, engine.ErrDebugToolsDisabled, http.StatusForbidden},
		{"occupied", map[string]any{"row": 0, "col": 0, "value": 2}, engine.ErrCellOccupied, http.StatusBadRequest},
		{"bad value", map[string]any{"row": 0, "col": 0, "value": 3}, engine.ErrInvalidTileValue, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockGameService{
				PlaceTileFunc: func(ctx context.Context, sessionID string, pos engine.Position, value int) (*service.MoveResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					if pos != (engine.Position{Row: 0, Col: 1}) || value != 64 {
						t.Errorf("unexpected placement %+v %d", pos, value)
					}
					return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
				},
			}
			server, hub := setupTestServer(mock)

			w := serve(server, makeRequest("POST", "/api/sessions/s/tiles", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusOK && len(hub.states) != 1 {
				t.Error("expected a broadcast after placing a tile")
			}
		})
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{
				{ConfigID: "classic", Name: "Classic 2048", BoardSize: 4, WinningValue: 2048},
				{ConfigID: "tiny", Name: "Tiny", BoardSize: 3, WinningValue: 256},
			}, nil
		},
	}
	server, _ := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	var configs []*service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 2 || configs[1].BoardSize != 3 {
		t.Errorf("unexpected configs %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	mock := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "big" {
				return nil, config.ErrConfigNotFound
			}
			return &engine.GameConfig{Name: "Big", BoardSize: 6}, nil
		},
	}
	server, _ := setupTestServer(mock)

	w := serve(server, makeRequest("GET", "/api/configs/big.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var cfg engine.GameConfig
	parseResponse(t, w, &cfg)
	if cfg.BoardSize != 6 {
		t.Errorf("unexpected config %+v", cfg)
	}

	if w := serve(server, makeRequest("GET", "/api/configs/huge", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestCreateConfig(t *testing.T) {
	var savedID string
	var saved *engine.GameConfig
	mock := &MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.GameConfig) error {
			if cfg.BoardSize < 2 {
				return fmt.Errorf("%w: board too small", config.ErrInvalidConfig)
			}
			savedID, saved = configName, cfg
			return nil
		},
	}
	server, _ := setupTestServer(mock)

	body := map[string]any{"config_id": "wide", "name": "Wide", "board_size": 5, "winning_value": 4096}
	w := serve(server, makeRequest("POST", "/api/configs", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	if savedID != "wide" || saved.Name != "Wide" || saved.BoardSize != 5 || saved.WinningValue != 4096 {
		t.Errorf("unexpected save %s %+v", savedID, saved)
	}
	if saved.Spawn4Probability != engine.DefaultSpawn4Probability {
		t.Errorf("expected default spawn probability, got %g", saved.Spawn4Probability)
	}

	zero := map[string]any{"config_id": "twos", "name": "Twos", "spawn_4_probability": 0}
	if w := serve(server, makeRequest("POST", "/api/configs", zero)); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	if savedID != "twos" || saved.Spawn4Probability != 0 {
		t.Errorf("explicit zero probability lost: %s %+v", savedID, saved)
	}

	if w := serve(server, makeRequest("POST", "/api/configs", map[string]any{"name": "Bad", "board_size": 1})); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if w := serve(server, makeRequest("POST", "/api/configs", map[string]any{"board_size": 4})); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without an id, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(&MockGameService{})
	w := serve(server, makeRequest("GET", "/health", nil))
	var resp map[string]string
	parseResponse(t, w, &resp)
	if w.Code != http.StatusOK || resp["status"] != "healthy" {
		t.Errorf("unexpected health response %d %v", w.Code, resp)
	}
}

func TestWebSocket(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "live" {
				return nil, errMockNotFound
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
	}
	server, _ := setupTestServer(mock)

	if w := serve(server, makeRequest("GET", "/ws", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws?session=ghost", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws?session=live", nil)); w.Code != http.StatusSwitchingProtocols {
		t.Errorf("Expected hand-off to the hub, got %d", w.Code)
	}

	noHub := NewServer(mock, nil)
	if w := serve(noHub, makeRequest("GET", "/ws?session=live", nil)); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a hub, got %d", w.Code)
	}
}
