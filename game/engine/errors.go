package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds          = errors.New("position out of bounds")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrIllegalState         = errors.New("illegal state")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrCellOccupied         = errors.New("cell already occupied")
	ErrInvalidTileValue     = errors.New("invalid tile value")
	ErrDebugToolsDisabled   = errors.New("debug tools are disabled for this game")
)

// PositionError reports a position outside the board
type PositionError struct {
	Pos  Position
	Size int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position (%d,%d) outside %dx%d board", e.Pos.Row, e.Pos.Col, e.Size, e.Size)
}

// Unwrap lets errors.Is match ErrOutOfBounds
func (e *PositionError) Unwrap() error {
	return ErrOutOfBounds
}
