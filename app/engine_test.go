package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomonte/adapters/rng"
	"gomonte/adapters/sampler"
	"gomonte/domain/dist"
	"gomonte/domain/model"
	"gomonte/internal/testkit"
)

func twoVariableModel(t *testing.T) *model.StochasticModel {
	t.Helper()
	m, err := model.NewStochasticModel([]model.Variable{
		{Name: "height", Spec: dist.Normal(170, 10)},
		{Name: "weight", Spec: dist.Normal(70, 5)},
	})
	require.NoError(t, err)
	return m
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(2000)
	assert.Equal(t, 2000, cfg.Iterations)
	assert.Equal(t, 200, cfg.BurnIn) // 10%
	assert.Equal(t, 1, cfg.Thinning)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.ProgressInterval)
	assert.Equal(t, 1, cfg.Chains)
}

func TestSimulateDeterminism(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(500)
	cfg.Seed = 42

	a, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)
	b, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	require.Equal(t, a.Samples.Rows(), b.Samples.Rows())
	assert.Equal(t, a.Samples, b.Samples)
	assert.Equal(t, int64(42), a.Manifest.Seed)
}

func TestSimulateStatistics(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(10000)
	cfg.Seed = 7

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	assert.True(t, r.Success)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, 9000, r.Samples.Rows()) // iterations minus burn-in
	assert.Equal(t, []string{"height", "weight"}, r.VariableNames)
	assert.NotEmpty(t, r.RunID)

	height := r.Statistics.Variables["height"]
	assert.InDelta(t, 170, height.Mean, 1)
	assert.InDelta(t, 10, height.StdDev, 0.5)
	assert.Less(t, height.Percentiles[5], height.Percentiles[50])
	assert.Less(t, height.Percentiles[50], height.Percentiles[95])
	assert.InDelta(t, 170, height.Percentiles[50], 1)

	require.Len(t, r.Statistics.Correlation, 2)
	assert.Equal(t, 1.0, r.Statistics.Correlation[0][0])
	// Independent variables: off-diagonal correlation near zero.
	assert.InDelta(t, 0, r.Statistics.Correlation[0][1], 0.05)

	assert.True(t, r.Diagnostics.HasConverged)
	assert.Less(t, r.Diagnostics.RHat, 1.1)
	assert.Greater(t, r.Diagnostics.EffectiveSampleSize, 900)
	assert.Equal(t, 1.0, r.Diagnostics.Autocorrelation[0])
	assert.Greater(t, r.Diagnostics.MCSE["height"], 0.0)
}

func TestSimulateBurnInAndThinning(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(100)
	cfg.Seed = 1
	cfg.BurnIn = 20
	cfg.Thinning = 4

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)
	// Iterations 20, 24, ..., 96 are kept.
	assert.Equal(t, 20, r.Samples.Rows())
	assert.Equal(t, 20, r.Manifest.BurnIn)
	assert.Equal(t, 4, r.Manifest.Thinning)
}

func TestSimulateZeroTimeout(t *testing.T) {
	m := twoVariableModel(t)
	cfg := MonteCarloConfig{Iterations: 1000, Seed: 9} // Timeout left at 0

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	// An immediate timeout is still a successful run with partial (here
	// empty) samples and a warning, never an error.
	assert.True(t, r.Success)
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "timed out")
	assert.Less(t, r.Samples.Rows(), 900)
	assert.False(t, r.Diagnostics.HasConverged)
}

func TestSimulateTimeoutMidRun(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(1000)
	cfg.Seed = 3
	cfg.BurnIn = 0
	cfg.Timeout = 10 * time.Second
	cfg.ProgressInterval = 100

	clock := testkit.NewFakeClock()
	var reports []ProgressReport
	r, err := NewEngineWithClock(cfg, clock).Simulate(context.Background(), m, func(p ProgressReport) {
		reports = append(reports, p)
		if p.Completed == 500 {
			clock.Advance(time.Minute)
		}
	})
	require.NoError(t, err)

	assert.True(t, r.Success)
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "timed out")
	// The clock jumps after iteration 500; the check at 501 trips.
	assert.Equal(t, 501, r.Samples.Rows())
	assert.Contains(t, r.Warnings[0], "501/1000")

	final := reports[len(reports)-1]
	assert.Equal(t, 100.0, final.Percentage)
	assert.Equal(t, 501, final.SamplesCollected)
}

func TestSimulateCancellation(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(1000)
	cfg.Seed = 4

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewEngine(cfg).Simulate(ctx, m, nil)
	require.NoError(t, err)

	assert.True(t, r.Success)
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "canceled")
	assert.Equal(t, 0, r.Samples.Rows())
}

func TestSimulateProgress(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(1000)
	cfg.Seed = 5
	cfg.ProgressInterval = 250

	var reports []ProgressReport
	r, err := NewEngine(cfg).Simulate(context.Background(), m, func(p ProgressReport) {
		reports = append(reports, p)
	})
	require.NoError(t, err)

	// Reports at 0, 250, 500, 750 plus the final 100% report.
	require.Len(t, reports, 5)
	assert.Equal(t, 0, reports[0].Completed)
	assert.Equal(t, 250, reports[1].Completed)
	assert.Equal(t, 25.0, reports[1].Percentage)
	assert.Equal(t, 1000, reports[1].Total)

	final := reports[len(reports)-1]
	assert.Equal(t, 1000, final.Completed)
	assert.Equal(t, 100.0, final.Percentage)
	assert.Equal(t, time.Duration(0), final.EstimatedRemaining)
	assert.Equal(t, r.Samples.Rows(), final.SamplesCollected)
}

func TestSimulateEarlyStop(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(50000)
	cfg.Seed = 6
	cfg.BurnIn = 0
	cfg.ConvergenceThreshold = 10 // any change passes

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	// The first mean comparison happens at the second window boundary.
	assert.Equal(t, 200, r.Samples.Rows())
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "converged early")
}

func TestSimulateMultiChain(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(3000)
	cfg.Seed = 8
	cfg.Chains = 3

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	assert.True(t, r.Success)
	assert.Equal(t, 2700, r.Samples.Rows())
	// Same model on derived seeds: the cross-chain R-hat stays near 1.
	assert.GreaterOrEqual(t, r.Diagnostics.RHat, 1.0)
	assert.Less(t, r.Diagnostics.RHat, 1.1)
}

func TestSimulateMultiChainSurfacesChainWarnings(t *testing.T) {
	m := twoVariableModel(t)
	cfg := MonteCarloConfig{Iterations: 500, Seed: 13, Chains: 2} // Timeout left at 0

	r, err := NewEngine(cfg).Simulate(context.Background(), m, nil)
	require.NoError(t, err)
	assert.True(t, r.Success)

	// Every chain times out immediately; the secondary chain's warning
	// arrives prefixed with its index instead of being dropped.
	var primary, secondary bool
	for _, w := range r.Warnings {
		if strings.HasPrefix(w, "chain 1: ") {
			secondary = true
			assert.Contains(t, w, "timed out")
		} else if strings.Contains(w, "timed out") {
			primary = true
		}
	}
	assert.True(t, primary, "primary chain warning missing: %v", r.Warnings)
	assert.True(t, secondary, "secondary chain warning missing: %v", r.Warnings)
}

func TestReseedRestoresReproducibility(t *testing.T) {
	m := twoVariableModel(t)
	cfg := NewConfig(200)
	cfg.Seed = 11

	eng := NewEngine(cfg)
	first, err := eng.Simulate(context.Background(), m, nil)
	require.NoError(t, err)

	// The stream advanced, so an immediate rerun differs.
	second, err := eng.Simulate(context.Background(), m, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Samples, second.Samples)

	eng.Reseed(11)
	third, err := eng.Simulate(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Samples, third.Samples)
}

func TestSimulateWithEvaluator(t *testing.T) {
	cfg := NewConfig(1000)
	cfg.Seed = 12
	cfg.BurnIn = 0

	t.Run("derived variables", func(t *testing.T) {
		eng := NewEngine(cfg)
		s, err := sampler.New(dist.Uniform(0, 1), rng.NewStream(12))
		require.NoError(t, err)

		r, err := eng.SimulateWithEvaluator(context.Background(), []string{"draw", "scaled", "missing"}, s,
			func(draw float64) map[string]float64 {
				return map[string]float64{"draw": draw, "scaled": draw * 10}
			}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1000, r.Samples.Rows())
		draw := r.Statistics.Variables["draw"]
		scaled := r.Statistics.Variables["scaled"]
		assert.InDelta(t, 0.5, draw.Mean, 0.05)
		assert.InDelta(t, 10*draw.Mean, scaled.Mean, 1e-9)
		// Names the evaluator never produces resolve to zero.
		assert.Equal(t, 0.0, r.Statistics.Variables["missing"].Mean)
	})

	t.Run("validation", func(t *testing.T) {
		eng := NewEngine(cfg)
		s, err := sampler.New(dist.Uniform(0, 1), rng.NewStream(1))
		require.NoError(t, err)
		evaluator := func(draw float64) map[string]float64 { return nil }

		_, err = eng.SimulateWithEvaluator(context.Background(), nil, s, evaluator, nil)
		assert.Error(t, err)
		_, err = eng.SimulateWithEvaluator(context.Background(), []string{"x"}, nil, evaluator, nil)
		assert.Error(t, err)
		_, err = eng.SimulateWithEvaluator(context.Background(), []string{"x"}, s, nil, nil)
		assert.Error(t, err)
	})
}

func TestClockSeedWhenZero(t *testing.T) {
	cfg := NewConfig(100)
	eng := NewEngineWithClock(cfg, testkit.NewFakeClock())
	assert.NotZero(t, eng.Seed())
}
