package engine

import (
	"fmt"
	"slices"
)

// Spawn places one tile on a uniformly chosen empty cell. It returns a nil
// event when the board is full. The value is 4 with Spawn4Probability
// percent, except that only 2s appear until some tile reaches 4.
func Spawn(board *Board, rng RandomSource, config *GameConfig) (*SpawnEvent, error) {
	if err := checkGridArgs(board, rng, config); err != nil {
		return nil, err
	}

	empty := slices.Collect(board.EmptyPositions())
	if len(empty) == 0 {
		return nil, nil
	}
	pos := empty[rng.IntN(len(empty))]

	value := MinTileValue
	if board.MaxValue() >= 2*MinTileValue && rng.Float64()*100 < config.Spawn4Probability {
		value = 2 * MinTileValue
	}

	ev := SpawnEvent{TileID: board.NewTileID(), Value: value, At: pos}
	board.put(pos, Cell{Value: value, ID: ev.TileID})
	return &ev, nil
}

// PlaceTile puts a tile of the given value on a specific empty cell
func PlaceTile(board *Board, pos Position, value int) (SpawnEvent, error) {
	if board == nil {
		return SpawnEvent{}, fmt.Errorf("%w: board cannot be nil", ErrInvalidConfiguration)
	}
	cell, err := board.Get(pos)
	if err != nil {
		return SpawnEvent{}, err
	}
	if !cell.Empty() {
		return SpawnEvent{}, fmt.Errorf("%w: (%d,%d) holds %d", ErrCellOccupied, pos.Row, pos.Col, cell.Value)
	}
	if !isTileValue(value) {
		return SpawnEvent{}, fmt.Errorf("%w: %d is not a power of two >= %d", ErrInvalidTileValue, value, MinTileValue)
	}

	ev := SpawnEvent{TileID: board.NewTileID(), Value: value, At: pos}
	board.put(pos, Cell{Value: value, ID: ev.TileID})
	return ev, nil
}

// NewGameBoard creates an empty board for config and spawns its initial tiles
func NewGameBoard(config *GameConfig, rng RandomSource) (*Board, []SpawnEvent, error) {
	if config == nil {
		return nil, nil, fmt.Errorf("%w: config cannot be nil", ErrInvalidConfiguration)
	}
	board, err := NewBoard(config.BoardSize)
	if err != nil {
		return nil, nil, err
	}

	spawns := make([]SpawnEvent, 0, config.InitialTileCount)
	for i := 0; i < config.InitialTileCount; i++ {
		ev, err := Spawn(board, rng, config)
		if err != nil {
			return nil, nil, err
		}
		if ev == nil {
			break
		}
		spawns = append(spawns, *ev)
	}
	return board, spawns, nil
}
