package engine

import (
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Board is a square grid of cells. It holds no reference to any other
// component and is only mutated through the grid operations in this package.
type Board struct {
	size   int
	cells  []Cell
	nextID TileID
}

// NewBoard creates an empty size x size board
func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: board size must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinBoardSize, MaxBoardSize, size)
	}
	return &Board{
		size:   size,
		cells:  make([]Cell, size*size),
		nextID: 1,
	}, nil
}

// NewBoardFromValues builds a board from rows of tile values (0 = empty).
// Tiles get ids in row-major order starting at 1.
func NewBoardFromValues(rows [][]int) (*Board, error) {
	b, err := NewBoard(len(rows))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != b.size {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d",
				ErrInvalidConfiguration, r, len(row), b.size)
		}
		for c, v := range row {
			if v == 0 {
				continue
			}
			if !isTileValue(v) {
				return nil, fmt.Errorf("%w: %d at (%d,%d)", ErrInvalidTileValue, v, r, c)
			}
			b.cells[r*b.size+c] = Cell{Value: v, ID: b.NewTileID()}
		}
	}
	return b, nil
}

// Size returns the board dimension
func (b *Board) Size() int {
	return b.size
}

// InBounds reports whether pos lies on the board
func (b *Board) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.size && pos.Col >= 0 && pos.Col < b.size
}

// Get returns the cell at pos
func (b *Board) Get(pos Position) (Cell, error) {
	if !b.InBounds(pos) {
		return Cell{}, &PositionError{Pos: pos, Size: b.size}
	}
	return b.cells[pos.Row*b.size+pos.Col], nil
}

// Set overwrites the cell at pos
func (b *Board) Set(pos Position, cell Cell) error {
	if !b.InBounds(pos) {
		return &PositionError{Pos: pos, Size: b.size}
	}
	b.cells[pos.Row*b.size+pos.Col] = cell
	return nil
}

// at and put skip bounds checks for positions produced by this package
func (b *Board) at(pos Position) Cell {
	return b.cells[pos.Row*b.size+pos.Col]
}

func (b *Board) put(pos Position, cell Cell) {
	b.cells[pos.Row*b.size+pos.Col] = cell
}

// EmptyPositions yields empty cells in row-major order
func (b *Board) EmptyPositions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for i, cell := range b.cells {
			if !cell.Empty() {
				continue
			}
			if !yield(Position{Row: i / b.size, Col: i % b.size}) {
				return
			}
		}
	}
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	n := 0
	for _, cell := range b.cells {
		if cell.Empty() {
			n++
		}
	}
	return n
}

// IsFull reports whether every cell holds a tile
func (b *Board) IsFull() bool {
	for _, cell := range b.cells {
		if cell.Empty() {
			return false
		}
	}
	return true
}

// NewTileID hands out the next unused tile id
func (b *Board) NewTileID() TileID {
	id := b.nextID
	b.nextID++
	return id
}

// Clone returns a deep copy, including the id counter
func (b *Board) Clone() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return &Board{size: b.size, cells: cells, nextID: b.nextID}
}

// Equal compares cells and id counters
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.size != other.size || b.nextID != other.nextID {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rows returns a copy of the cells as rows
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.size)
	for r := range rows {
		rows[r] = make([]Cell, b.size)
		copy(rows[r], b.cells[r*b.size:(r+1)*b.size])
	}
	return rows
}

// Values returns the tile values as rows, 0 for empty cells
func (b *Board) Values() [][]int {
	rows := make([][]int, b.size)
	for r := range rows {
		rows[r] = make([]int, b.size)
		for c := range rows[r] {
			rows[r][c] = b.cells[r*b.size+c].Value
		}
	}
	return rows
}

// MaxValue returns the highest tile value on the board
func (b *Board) MaxValue() int {
	best := 0
	for _, cell := range b.cells {
		if cell.Value > best {
			best = cell.Value
		}
	}
	return best
}

// Sum returns the total of all tile values
func (b *Board) Sum() int {
	total := 0
	for _, cell := range b.cells {
		total += cell.Value
	}
	return total
}

// TileCount returns the number of occupied cells
func (b *Board) TileCount() int {
	return len(b.cells) - b.EmptyCount()
}

// HasAdjacentEqual reports whether any two horizontally or vertically
// adjacent cells hold equal tiles
func (b *Board) HasAdjacentEqual() bool {
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			v := b.cells[r*b.size+c].Value
			if v == 0 {
				continue
			}
			if c+1 < b.size && b.cells[r*b.size+c+1].Value == v {
				return true
			}
			if r+1 < b.size && b.cells[(r+1)*b.size+c].Value == v {
				return true
			}
		}
	}
	return false
}

// String renders the board as rows of values, "." for empty
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			v := b.cells[r*b.size+c].Value
			if v == 0 {
				sb.WriteString(".")
			} else {
				sb.WriteString(strconv.Itoa(v))
			}
		}
		if r < b.size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Validate checks the board invariants: power-of-two values and unique ids
func (b *Board) Validate() error {
	seen := make(map[TileID]bool, len(b.cells))
	for i, cell := range b.cells {
		pos := Position{Row: i / b.size, Col: i % b.size}
		if cell.Empty() {
			if cell.ID != 0 {
				return fmt.Errorf("%w: empty cell (%d,%d) carries id %d", ErrIllegalState, pos.Row, pos.Col, cell.ID)
			}
			continue
		}
		if !isTileValue(cell.Value) {
			return fmt.Errorf("%w: %d at (%d,%d)", ErrInvalidTileValue, cell.Value, pos.Row, pos.Col)
		}
		if cell.ID == 0 || cell.ID >= b.nextID {
			return fmt.Errorf("%w: tile at (%d,%d) has id %d outside issued range", ErrIllegalState, pos.Row, pos.Col, cell.ID)
		}
		if seen[cell.ID] {
			return fmt.Errorf("%w: duplicate tile id %d", ErrIllegalState, cell.ID)
		}
		seen[cell.ID] = true
	}
	return nil
}

type boardJSON struct {
	Size   int      `json:"size"`
	Cells  [][]Cell `json:"cells"`
	NextID TileID   `json:"next_id"`
}

// MarshalJSON encodes the board with its id counter so it can be restored
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{Size: b.size, Cells: b.Rows(), NextID: b.nextID})
}

// UnmarshalJSON restores a board and re-checks its invariants
func (b *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored, err := NewBoard(raw.Size)
	if err != nil {
		return err
	}
	if len(raw.Cells) != raw.Size {
		return fmt.Errorf("%w: board has %d rows, expected %d", ErrInvalidConfiguration, len(raw.Cells), raw.Size)
	}
	for r, row := range raw.Cells {
		if len(row) != raw.Size {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidConfiguration, r, len(row), raw.Size)
		}
		copy(restored.cells[r*raw.Size:], row)
	}
	restored.nextID = raw.NextID
	if restored.nextID == 0 {
		restored.nextID = 1
	}
	if err := restored.Validate(); err != nil {
		return err
	}
	*b = *restored
	return nil
}

// isTileValue reports whether v is a power of two >= 2
func isTileValue(v int) bool {
	return v >= MinTileValue && v&(v-1) == 0
}
