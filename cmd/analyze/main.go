// Command analyze prints quick, human-readable heuristics about the game
// configuration files in a configs directory. For each config it summarizes
// the board, the winning target and spawn odds, estimates how many moves a
// win needs at minimum, and runs a handful of seeded random playouts to show
// how far an aimless player gets.
package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/merge2048/game/engine"
)

const (
	playouts        = 20
	maxPlayoutMoves = 100000
)

// PlayoutStats summarizes a batch of random games
type PlayoutStats struct {
	Games     int
	Wins      int
	AvgScore  float64
	AvgMoves  float64
	BestTile  int
	TileReach map[int]int // games whose best tile reached at least the key
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No config files found in %s\n", dir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeConfig(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	cells := config.BoardSize * config.BoardSize
	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Board: %d x %d (%d cells)\n", config.BoardSize, config.BoardSize, cells)
	fmt.Fprintf(w, "Winning tile: %d (rank %d)\n", config.WinningValue, engine.TileRank(config.WinningValue))
	fmt.Fprintf(w, "4-spawn chance: %g%% (mean spawn %.2f)\n", config.Spawn4Probability, engine.ExpectedSpawnValue(config))
	fmt.Fprintf(w, "Largest possible tile: %d\n", engine.MaxReachableTile(config.BoardSize))

	fmt.Fprintf(w, "Estimated minimum moves to win: %d\n", minMovesToWin(config))

	if config.ContinueAfterWin {
		fmt.Fprintf(w, "Play continues after victory\n")
	}
	if config.DebugTools {
		fmt.Fprintf(w, "⚠️  Debug tools enabled: tiles can be placed by hand\n")
	}

	stats := runPlayouts(config, playouts, 1)
	fmt.Fprintf(w, "Random playouts: %d games, %d wins\n", stats.Games, stats.Wins)
	fmt.Fprintf(w, "  Avg score: %.0f, avg moves: %.0f, best tile: %d\n", stats.AvgScore, stats.AvgMoves, stats.BestTile)

	tiles := make([]int, 0, len(stats.TileReach))
	for tile := range stats.TileReach {
		tiles = append(tiles, tile)
	}
	sort.Ints(tiles)
	for _, tile := range tiles {
		fmt.Fprintf(w, "  reached %5d: %3.0f%%\n", tile, 100*float64(stats.TileReach[tile])/float64(stats.Games))
	}

	if stats.Wins == 0 && config.WinningValue <= 64 {
		fmt.Fprintf(w, "⚠️  WARNING: random play never wins even though the target is small\n")
	}

	return nil
}

// minMovesToWin estimates the fewest scoring moves needed: the board sum only
// grows through spawns, so it must reach the winning value
func minMovesToWin(config *engine.GameConfig) int {
	initial := float64(config.InitialTileCount * 2)
	need := float64(config.WinningValue) - initial
	if need <= 0 {
		return 0
	}
	// spawns are 2s until a 4 is on the board, so the best case uses the mean
	return int(need/engine.ExpectedSpawnValue(config) + 0.5)
}

// runPlayouts plays games choosing uniformly among the legal moves
func runPlayouts(config *engine.GameConfig, games int, seed uint64) PlayoutStats {
	stats := PlayoutStats{Games: games, TileReach: make(map[int]int)}
	picker := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	totalScore, totalMoves := 0, 0
	for g := 0; g < games; g++ {
		e, err := engine.NewEngine(config, seed+uint64(g))
		if err != nil {
			stats.Games = g
			break
		}

		for moves := 0; moves < maxPlayoutMoves; moves++ {
			possible := e.GetPossibleMoves()
			if len(possible) == 0 || e.GetStatus() != engine.StatusPlaying {
				break
			}
			if _, err := e.Move(possible[picker.IntN(len(possible))]); err != nil {
				break
			}
		}

		state := e.GetState()
		totalScore += state.Score
		totalMoves += state.TotalMoves
		if state.Victory {
			stats.Wins++
		}
		stats.BestTile = max(stats.BestTile, state.Best)
		for tile := 4; tile <= state.Best; tile *= 2 {
			if tile >= 64 {
				stats.TileReach[tile]++
			}
		}
	}

	if stats.Games > 0 {
		stats.AvgScore = float64(totalScore) / float64(stats.Games)
		stats.AvgMoves = float64(totalMoves) / float64(stats.Games)
	}
	return stats
}
