package rng

import (
	"math/rand"
)

// seedDeriveMultiplier spaces child seeds far apart so sibling chains
// never share a stream prefix.
const seedDeriveMultiplier int64 = 1442695040888963407

// Stream is a deterministic seeded generator of uniform draws in [0,1).
// Identical seeds produce identical output sequences. A Stream is not
// safe for concurrent use: each engine invocation owns exactly one.
type Stream struct {
	seed int64
	rng  *rand.Rand
}

// NewStream creates a stream seeded with the given value.
func NewStream(seed int64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next uniform draw in [0,1).
func (s *Stream) Next() float64 {
	return s.rng.Float64()
}

// Reseed resets the stream state to the given seed.
func (s *Stream) Reseed(seed int64) {
	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
}

// Seed returns the seed the current sequence started from.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Derive creates an independent child stream for the given index.
// The derivation is deterministic, so multi-chain runs stay reproducible
// from a single base seed.
func (s *Stream) Derive(index int) *Stream {
	child := s.seed + int64(index+1)*seedDeriveMultiplier
	return NewStream(child)
}

// DeriveSeed computes the child seed for an index without constructing
// the stream, for callers that build engines per chain.
func DeriveSeed(base int64, index int) int64 {
	return base + int64(index+1)*seedDeriveMultiplier
}
