package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source draws secrets. Draw must return a value uniformly distributed
// over [1, max] for any max >= 1.
type Source interface {
	Draw(max int) int
}

// randSource is the production Source backed by a PCG generator.
type randSource struct {
	rng *rand.Rand
}

// NewRandSource returns a Source seeded with seed. Two sources built from
// the same seed produce the same sequence of secrets.
func NewRandSource(seed uint64) Source {
	return &randSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DefaultSource returns a Source seeded from crypto/rand.
func DefaultSource() Source {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return NewRandSource(rand.Uint64())
	}
	return NewRandSource(binary.LittleEndian.Uint64(b[:]))
}

func (s *randSource) Draw(max int) int {
	if max <= 1 {
		return 1
	}
	return 1 + s.rng.IntN(max)
}

// FixedSource always draws v, clamped into [1, max] so the bounds
// invariant holds for any max. Used by tests and other callers that need
// a known secret.
type FixedSource int

func (f FixedSource) Draw(max int) int {
	return clamp(int(f), 1, max)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
