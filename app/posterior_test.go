package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomonte/domain/model"
)

func simulatedResult(t *testing.T) *model.MonteCarloResult {
	t.Helper()
	cfg := NewConfig(5000)
	cfg.Seed = 31
	r, err := NewEngine(cfg).Simulate(context.Background(), twoVariableModel(t), nil)
	require.NoError(t, err)
	return r
}

func TestSummarizeResult(t *testing.T) {
	r := simulatedResult(t)
	summaries := SummarizeResult(r, 0.95)
	require.Len(t, summaries, 2)

	height := summaries[0]
	assert.Equal(t, "height", height.Name)
	assert.InDelta(t, 170, height.Mean, 1)
	assert.Less(t, height.EqualTailed.Lower, height.Mean)
	assert.Greater(t, height.EqualTailed.Upper, height.Mean)
	// The HPD interval of a unimodal posterior is no wider than the
	// equal-tailed one at the same mass.
	assert.LessOrEqual(t, height.HPD.Width(), height.EqualTailed.Width()+0.5)
	assert.Greater(t, height.ESS, 100)
}

func TestProbabilityQueries(t *testing.T) {
	r := simulatedResult(t)

	t.Run("exceeds", func(t *testing.T) {
		assert.InDelta(t, 0.5, ProbExceeds(r, "height", 170), 0.05)
		assert.Equal(t, 1.0, ProbExceeds(r, "height", 0))
		assert.Equal(t, 0.0, ProbExceeds(r, "no_such_variable", 0))
	})

	t.Run("in range", func(t *testing.T) {
		// About 95% of Normal(170,10) mass lies within two sigma.
		assert.InDelta(t, 0.954, ProbInRange(r, "height", 150, 190), 0.02)
	})

	t.Run("paired comparison", func(t *testing.T) {
		// Height ~ N(170,10) exceeds weight ~ N(70,5) essentially always.
		assert.Equal(t, 1.0, ProbExceedsVariable(r, "height", "weight"))
		assert.Equal(t, 0.0, ProbExceedsVariable(r, "weight", "height"))
	})
}
