package engine

import "math/bits"

// TileHistogram counts tiles per value
func TileHistogram(board *Board) map[int]int {
	counts := make(map[int]int)
	for _, cell := range board.cells {
		if !cell.Empty() {
			counts[cell.Value]++
		}
	}
	return counts
}

// ExpectedSpawnValue is the mean value of a spawned tile once 4s are allowed
func ExpectedSpawnValue(config *GameConfig) float64 {
	p := config.Spawn4Probability / 100
	return 2*(1-p) + 4*p
}

// TileRank returns log2 of a tile value, 0 for empty cells
func TileRank(value int) int {
	if value <= 0 {
		return 0
	}
	return bits.Len(uint(value)) - 1
}

// FindTile returns the position of the tile with the given id
func FindTile(board *Board, id TileID) (Position, bool) {
	for i, cell := range board.cells {
		if cell.ID == id && !cell.Empty() {
			return Position{Row: i / board.size, Col: i % board.size}, true
		}
	}
	return Position{}, false
}
