package engine

import (
	"fmt"
	"strings"
)

// ParseDirection converts a command string into a Direction.
// Accepts up/down/left/right and the w/a/s/d keys.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Valid reports whether d is one of the four moves
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// traversal returns the positions of line i ordered so the first position is
// the wall the tiles move toward. Lines are rows for Left/Right and columns
// for Up/Down.
func traversal(size int, dir Direction, i int) []Position {
	line := make([]Position, size)
	for k := 0; k < size; k++ {
		switch dir {
		case Left:
			line[k] = Position{Row: i, Col: k}
		case Right:
			line[k] = Position{Row: i, Col: size - 1 - k}
		case Up:
			line[k] = Position{Row: k, Col: i}
		case Down:
			line[k] = Position{Row: size - 1 - k, Col: i}
		}
	}
	return line
}

// slideLine runs the merge-and-compact pass over one line. Each tile either
// merges into the last landed slot, if that slot holds the same value and
// has not merged yet this move, or lands in the next open slot.
func slideLine(b *Board, line []Position, res *MoveResult) {
	landed := make([]Cell, len(line))
	slot := -1
	slotMerged := false

	for _, from := range line {
		cell := b.at(from)
		if cell.Empty() {
			continue
		}

		if slot >= 0 && !slotMerged && landed[slot].Value == cell.Value {
			landed[slot].Value *= 2
			slotMerged = true
			res.ScoreDelta += landed[slot].Value
			res.MergeEvents = append(res.MergeEvents, MergeEvent{
				SurvivorID:    landed[slot].ID,
				SurvivorValue: landed[slot].Value,
				AbsorbedID:    cell.ID,
				AbsorbedFrom:  from,
				At:            line[slot],
			})
			continue
		}

		slot++
		landed[slot] = cell
		slotMerged = false
		if to := line[slot]; to != from {
			res.MoveEvents = append(res.MoveEvents, MoveEvent{TileID: cell.ID, From: from, To: to})
		}
	}

	for k, pos := range line {
		b.put(pos, landed[k])
	}
}

// slide applies the merge pass to every line without spawning
func slide(b *Board, dir Direction) *MoveResult {
	res := &MoveResult{
		Direction:   dir,
		MergeEvents: []MergeEvent{},
		MoveEvents:  []MoveEvent{},
		SpawnEvents: []SpawnEvent{},
	}
	for i := 0; i < b.size; i++ {
		slideLine(b, traversal(b.size, dir, i), res)
	}
	res.Changed = len(res.MoveEvents) > 0 || len(res.MergeEvents) > 0
	return res
}

// ApplyMove slides every line of board toward dir, merges equal tiles, spawns
// one new tile when anything changed and reports terminal conditions. The
// board is mutated in place; an unchanged move leaves it untouched.
func ApplyMove(board *Board, dir Direction, rng RandomSource, config *GameConfig) (*MoveResult, error) {
	if err := checkGridArgs(board, rng, config); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	bestBefore := board.MaxValue()
	res := slide(board, dir)

	if res.Changed {
		spawn, err := Spawn(board, rng, config)
		if err != nil {
			return nil, err
		}
		if spawn != nil {
			res.SpawnEvents = append(res.SpawnEvents, *spawn)
		}
	}

	res.GameOver = IsGameOver(board)
	best := board.MaxValue()
	res.Victory = best >= config.WinningValue
	if best > bestBefore {
		res.NewBestTile = &best
	}
	return res, nil
}

// IsGameOver reports a full board with no equal neighbours
func IsGameOver(board *Board) bool {
	return board.IsFull() && !board.HasAdjacentEqual()
}

// CanMove reports whether moving in dir would change the board
func CanMove(board *Board, dir Direction) bool {
	if board == nil || !dir.Valid() {
		return false
	}
	return slide(board.Clone(), dir).Changed
}

// PossibleMoves lists the directions that would change the board
func PossibleMoves(board *Board) []Direction {
	var moves []Direction
	for _, dir := range Directions {
		if CanMove(board, dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}

func checkGridArgs(board *Board, rng RandomSource, config *GameConfig) error {
	if board == nil {
		return fmt.Errorf("%w: board cannot be nil", ErrInvalidConfiguration)
	}
	if rng == nil {
		return fmt.Errorf("%w: random source cannot be nil", ErrInvalidConfiguration)
	}
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfiguration)
	}
	if board.Size() != config.BoardSize {
		return fmt.Errorf("%w: board is %dx%d but config expects %d",
			ErrInvalidConfiguration, board.Size(), board.Size(), config.BoardSize)
	}
	if config.Spawn4Probability < 0 || config.Spawn4Probability > 100 {
		return fmt.Errorf("%w: spawn_4_probability must be between 0 and 100, got %g",
			ErrInvalidConfiguration, config.Spawn4Probability)
	}
	return nil
}
