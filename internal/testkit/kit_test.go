package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellMixedChain(t *testing.T) {
	a := WellMixedChain(1000, 5, 2, 99)
	b := WellMixedChain(1000, 5, 2, 99)
	require.Len(t, a, 1000)
	assert.Equal(t, a, b, "same seed must replay the same chain")

	sum := 0.0
	for _, v := range a {
		sum += v
	}
	assert.InDelta(t, 5.0, sum/1000, 0.3)
}

func TestAR1Chain(t *testing.T) {
	chain := AR1Chain(1000, 0.95, 1, 99)
	require.Len(t, chain, 1000)

	// Neighbors of a near-unit-root series sit close together.
	nearby := 0
	for i := 1; i < len(chain); i++ {
		if d := chain[i] - chain[i-1]; d > -3 && d < 3 {
			nearby++
		}
	}
	assert.Greater(t, nearby, 900)
}

func TestTrendingChain(t *testing.T) {
	chain := TrendingChain(100, 10, 0.5)
	require.Len(t, chain, 100)
	assert.InDelta(t, 10, chain[0], 0.2)
	assert.Greater(t, chain[99], chain[0]+45)
}

func TestConstantChain(t *testing.T) {
	for _, v := range ConstantChain(50, 7) {
		assert.Equal(t, 7.0, v)
	}
}

func TestCorrelatedPair(t *testing.T) {
	x, y := CorrelatedPair(100, 3, 99)
	require.Len(t, y, len(x))
	for i := range x {
		assert.Equal(t, 2*x[i]+3, y[i])
	}
}
