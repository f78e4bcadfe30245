package engine

import (
	"fmt"
	"math/rand/v2"
)

// RandomSource is the only randomness the grid engine consumes.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a uniform int in [0, n)
	IntN(n int) int
	// Float64 returns a uniform float in [0, 1)
	Float64() float64
}

// SeededSource is a reproducible RandomSource whose state can be saved and
// restored, so a persisted session continues with the same random stream.
type SeededSource struct {
	seed uint64
	pcg  *rand.PCG
	rng  *rand.Rand
}

// NewRandomSource returns a PCG-backed source for seed
func NewRandomSource(seed uint64) *SeededSource {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &SeededSource{seed: seed, pcg: pcg, rng: rand.New(pcg)}
}

// RestoreRandomSource rebuilds a source from a state produced by State
func RestoreRandomSource(seed uint64, state []byte) (*SeededSource, error) {
	src := NewRandomSource(seed)
	if len(state) == 0 {
		return src, nil
	}
	if err := src.pcg.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("%w: rng state: %v", ErrIllegalState, err)
	}
	return src, nil
}

func (s *SeededSource) IntN(n int) int {
	return s.rng.IntN(n)
}

func (s *SeededSource) Float64() float64 {
	return s.rng.Float64()
}

// Seed returns the seed the source was created with
func (s *SeededSource) Seed() uint64 {
	return s.seed
}

// State serializes the current generator position
func (s *SeededSource) State() ([]byte, error) {
	return s.pcg.MarshalBinary()
}
