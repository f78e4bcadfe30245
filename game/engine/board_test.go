package engine

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{0, true},
		{1, true},
		{-3, true},
		{2, false},
		{4, false},
		{MaxBoardSize, false},
		{MaxBoardSize + 1, true},
	}

	for _, tt := range tests {
		b, err := NewBoard(tt.size)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("size %d: expected ErrInvalidConfiguration, got %v", tt.size, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("size %d: unexpected error %v", tt.size, err)
		}
		if b.Size() != tt.size {
			t.Errorf("expected size %d, got %d", tt.size, b.Size())
		}
		if b.EmptyCount() != tt.size*tt.size {
			t.Errorf("new board should be empty, got %d empty cells", b.EmptyCount())
		}
	}
}

func TestBoardGetSetBounds(t *testing.T) {
	b, _ := NewBoard(4)

	outside := []Position{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {10, 10}}
	for _, pos := range outside {
		_, err := b.Get(pos)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%v): expected ErrOutOfBounds, got %v", pos, err)
		}
		var perr *PositionError
		if !errors.As(err, &perr) || perr.Pos != pos {
			t.Errorf("Get(%v): expected PositionError carrying the position, got %v", pos, err)
		}
		if err := b.Set(pos, Cell{Value: 2, ID: 1}); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v): expected ErrOutOfBounds, got %v", pos, err)
		}
	}

	pos := Position{Row: 2, Col: 3}
	if err := b.Set(pos, Cell{Value: 8, ID: b.NewTileID()}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cell, err := b.Get(pos)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cell.Value != 8 || cell.ID != 1 {
		t.Errorf("unexpected cell %+v", cell)
	}
}

func TestBoardEmptyPositions(t *testing.T) {
	b := mustBoard(t, [][]int{
		{2, 0},
		{0, 4},
	})

	got := slices.Collect(b.EmptyPositions())
	want := []Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmptyPositions mismatch (-want +got):\n%s", diff)
	}

	// lazily enumerable: stopping early must not visit the rest
	visited := 0
	for range b.EmptyPositions() {
		visited++
		break
	}
	if visited != 1 {
		t.Errorf("expected early stop after 1, visited %d", visited)
	}

	if b.IsFull() {
		t.Error("board with empty cells reported full")
	}
	full := mustBoard(t, [][]int{{2, 4}, {8, 16}})
	if !full.IsFull() {
		t.Error("full board not reported full")
	}
}

func TestBoardFromValuesRejectsBadInput(t *testing.T) {
	if _, err := NewBoardFromValues([][]int{{3, 0}, {0, 0}}); !errors.Is(err, ErrInvalidTileValue) {
		t.Errorf("expected ErrInvalidTileValue for 3, got %v", err)
	}
	if _, err := NewBoardFromValues([][]int{{1, 0}, {0, 0}}); !errors.Is(err, ErrInvalidTileValue) {
		t.Errorf("expected ErrInvalidTileValue for 1, got %v", err)
	}
	if _, err := NewBoardFromValues([][]int{{2, 0}, {0}}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for ragged rows, got %v", err)
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := mustBoard(t, [][]int{{2, 2}, {0, 4}})
	c := b.Clone()
	if !b.Equal(c) {
		t.Fatal("clone should equal original")
	}

	c.put(Position{Row: 1, Col: 0}, Cell{Value: 2, ID: c.NewTileID()})
	if b.Equal(c) {
		t.Error("mutating clone changed equality with original")
	}
	if cell, _ := b.Get(Position{Row: 1, Col: 0}); !cell.Empty() {
		t.Error("mutating clone leaked into original")
	}
}

func TestBoardHasAdjacentEqual(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want bool
	}{
		{"horizontal pair", [][]int{{2, 2}, {4, 8}}, true},
		{"vertical pair", [][]int{{2, 4}, {2, 8}}, true},
		{"no pairs", [][]int{{2, 4}, {4, 2}}, false},
		{"empty cells do not pair", [][]int{{0, 0}, {0, 0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustBoard(t, tt.rows).HasAdjacentEqual(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoardJSONRestore(t *testing.T) {
	b := mustBoard(t, [][]int{
		{2, 0, 0, 4},
		{0, 8, 0, 0},
		{0, 0, 0, 0},
		{16, 0, 0, 2},
	})

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored Board
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !b.Equal(&restored) {
		t.Errorf("restored board differs:\n%s\nvs\n%s", b, &restored)
	}
	if restored.NewTileID() != b.NewTileID() {
		t.Error("id counter not restored")
	}
}

func TestBoardJSONRejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"duplicate ids", `{"size":2,"cells":[[{"value":2,"id":1},{"value":2,"id":1}],[{},{}]],"next_id":3}`, ErrIllegalState},
		{"not power of two", `{"size":2,"cells":[[{"value":6,"id":1},{}],[{},{}]],"next_id":2}`, ErrInvalidTileValue},
		{"id never issued", `{"size":2,"cells":[[{"value":2,"id":9},{}],[{},{}]],"next_id":2}`, ErrIllegalState},
		{"wrong row count", `{"size":2,"cells":[[{},{}]],"next_id":1}`, ErrInvalidConfiguration},
		{"bad size", `{"size":1,"cells":[[{}]],"next_id":1}`, ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			err := json.Unmarshal([]byte(tt.data), &b)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBoardString(t *testing.T) {
	b := mustBoard(t, [][]int{{2, 0}, {0, 1024}})
	want := "2 .\n. 1024"
	if got := b.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
