package engine

import "testing"

// scriptedRand replays fixed draws. Once a script runs out it returns 0.
type scriptedRand struct {
	ints       []int
	floats     []float64
	intCalls   int
	floatCalls int
}

func (s *scriptedRand) IntN(n int) int {
	s.intCalls++
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRand) Float64() float64 {
	s.floatCalls++
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:              "Engine Test Config",
		Description:       "Configuration for engine tests",
		BoardSize:         4,
		WinningValue:      2048,
		Spawn4Probability: 10,
		InitialTileCount:  2,
		Messages: Messages{
			Welcome:     "Welcome to engine test!",
			Victory:     "Reached %d!",
			GameOver:    "Game over!",
			NoMove:      "Nothing moved",
			ScoreStatus: "Score: %d",
		},
	}
}

func mustBoard(t *testing.T, rows [][]int) *Board {
	t.Helper()
	b, err := NewBoardFromValues(rows)
	if err != nil {
		t.Fatalf("Failed to build board: %v", err)
	}
	return b
}

// engineWithBoard creates an engine and swaps in a prepared board
func engineWithBoard(t *testing.T, config *GameConfig, rows [][]int) *GameEngine {
	t.Helper()
	e, err := NewEngine(config, 1)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	state := &GameState{
		Board:      mustBoard(t, rows),
		Status:     StatusPlaying,
		ConfigName: config.Name,
		Seed:       1,
	}
	state.Best = state.Board.MaxValue()
	if err := e.SetState(state); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}
	return e
}
