// Package rng is the single seeded random stream a battle draws from.
//
// Every probabilistic decision (accuracy, critical hits, damage rolls,
// secondary effects, speed ties, sleep length) goes through one Source in a
// fixed call order, so a seed plus the submitted actions reproduces a battle
// exactly. A Source is not safe for concurrent use; the engine is
// single-threaded by contract.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// streamSalt decorrelates the two PCG words derived from one seed.
const streamSalt = 0x9e3779b97f4a7c15

// Source is a deterministic PCG stream
type Source struct {
	seed  int64
	r     *rand.Rand
	draws uint64
}

var _ dice.Roller = (*Source)(nil)

// New creates a stream for seed
func New(seed int64) *Source {
	return &Source{
		seed: seed,
		r:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^streamSalt)),
	}
}

// NewSeed generates a high-entropy seed for a new battle
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, errors.Wrap(err, "failed to read random seed")
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed the stream was created with
func (s *Source) Seed() int64 {
	return s.seed
}

// Draws returns how many values have been drawn so far
func (s *Source) Draws() uint64 {
	return s.draws
}

// IntN returns a value in [0, n). n <= 0 returns 0 without drawing.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.draws++
	return s.r.IntN(n)
}

// Range returns a value in [lo, hi]
func (s *Source) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.IntN(hi-lo+1)
}

// Chance reports success for a percent chance. 0 and 100 are decided
// without drawing.
func (s *Source) Chance(percent int) bool {
	if percent >= 100 {
		return true
	}
	if percent <= 0 {
		return false
	}
	return s.IntN(100) < percent
}

// OneIn reports success with probability 1/n
func (s *Source) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return s.IntN(n) == 0
}

// Roll returns a die result in [1, size]
func (s *Source) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	return s.IntN(size) + 1, nil
}

// RollN rolls count dice of the given size
func (s *Source) RollN(count, size int) ([]int, error) {
	if count <= 0 {
		return nil, errors.InvalidArgumentf("die count must be positive, got %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
