package ports

import "time"

// UniformSource provides seeded deterministic uniform draws in [0,1).
// A source is owned by exactly one engine invocation; determinism depends
// on consuming it only through bound samplers.
type UniformSource interface {
	// Next returns the next uniform draw in [0,1)
	Next() float64

	// Reseed resets the internal state to the given seed
	Reseed(seed int64)

	// Seed returns the seed the current sequence started from
	Seed() int64
}

// Clock abstracts wall-clock reads so tests can force determinism
// without touching global time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
