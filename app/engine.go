package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gomonte/adapters/rng"
	"gomonte/adapters/sampler"
	"gomonte/domain/core"
	"gomonte/domain/model"
	"gomonte/internal"
	"gomonte/internal/convergence"
	"gomonte/internal/stats"
	"gomonte/ports"
)

// Engine defaults.
const (
	defaultIterations    = 1000
	defaultTimeout       = 60 * time.Second
	earlyStopWindow      = 100 // kept samples between mean comparisons
	storedAutocorrMaxLag = 50
)

// MonteCarloConfig controls one simulation run. Build it with NewConfig
// and override fields as needed; the zero value is not usable directly
// (a zero Timeout means "time out immediately", which is meaningful and
// tested, not a default).
type MonteCarloConfig struct {
	Iterations           int
	BurnIn               int // negative means the default, 10% of iterations
	Thinning             int
	ConvergenceThreshold float64 // 0 disables the early stop
	Seed                 int64   // 0 means take a clock value
	Timeout              time.Duration
	ProgressInterval     int // iterations between progress callbacks
	Chains               int
}

// NewConfig fills every default for the given iteration count: burn-in
// 10%, thinning 1, timeout 60s, progress every iterations/100, 1 chain.
func NewConfig(iterations int) MonteCarloConfig {
	cfg := MonteCarloConfig{
		Iterations: iterations,
		BurnIn:     -1,
		Timeout:    defaultTimeout,
	}
	return cfg.normalized()
}

func (c MonteCarloConfig) normalized() MonteCarloConfig {
	if c.Iterations < 1 {
		c.Iterations = defaultIterations
	}
	if c.BurnIn < 0 {
		c.BurnIn = c.Iterations / 10
	}
	if c.Thinning < 1 {
		c.Thinning = 1
	}
	if c.ProgressInterval < 1 {
		c.ProgressInterval = c.Iterations / 100
		if c.ProgressInterval < 1 {
			c.ProgressInterval = 1
		}
	}
	if c.Chains < 1 {
		c.Chains = 1
	}
	return c
}

// ProgressReport is handed to the caller's progress callback. Reports
// are synchronous: the loop does not advance until the handler returns.
type ProgressReport struct {
	Completed          int
	Total              int
	Percentage         float64
	EstimatedRemaining time.Duration
	SamplesCollected   int
	ConvergenceMetric  float64 // latest max relative mean change, 0 until measured
}

// ProgressFunc receives progress reports at the configured interval plus
// one final 100% report.
type ProgressFunc func(ProgressReport)

// Evaluator derives one row of named values from a single custom draw.
// Names missing from the returned map resolve to 0.
type Evaluator func(draw float64) map[string]float64

// Engine runs Monte Carlo simulations. It owns one uniform stream that
// persists across Simulate calls unless reseeded, and must not be shared
// across concurrent simulations.
type Engine struct {
	cfg    MonteCarloConfig
	stream *rng.Stream
	clock  ports.Clock
	log    *internal.Logger
}

// NewEngine creates an engine with the system clock.
func NewEngine(cfg MonteCarloConfig) *Engine {
	return NewEngineWithClock(cfg, ports.SystemClock{})
}

// NewEngineWithClock injects the clock used for the default seed, the
// timeout checks, and remaining-time estimates, so tests can force
// determinism without touching global time.
func NewEngineWithClock(cfg MonteCarloConfig, clock ports.Clock) *Engine {
	cfg = cfg.normalized()
	if cfg.Seed == 0 {
		cfg.Seed = clock.Now().UnixNano()
	}
	return &Engine{
		cfg:    cfg,
		stream: rng.NewStream(cfg.Seed),
		clock:  clock,
		log:    internal.DefaultLogger,
	}
}

// Seed returns the seed the engine's stream started from.
func (e *Engine) Seed() int64 { return e.cfg.Seed }

// Reseed resets the engine's stream, restoring reproducibility for the
// next Simulate call.
func (e *Engine) Reseed(seed int64) {
	e.cfg.Seed = seed
	e.stream.Reseed(seed)
}

// Simulate runs the model for the configured iterations and returns a
// complete result. Timeouts and context cancellation surface only as
// warnings on the result; success stays true and partial samples are
// returned. With Chains > 1 the extra chains run concurrently on derived
// seeds and contribute a cross-chain R-hat to the diagnostics.
func (e *Engine) Simulate(ctx context.Context, m *model.StochasticModel, onProgress ProgressFunc) (*model.MonteCarloResult, error) {
	drawRow, err := modelRowDrawer(m, e.stream)
	if err != nil {
		return nil, err
	}
	names := m.Names()
	start := e.clock.Now()

	if e.cfg.Chains > 1 {
		extraCh := make([]model.SampleMatrix, e.cfg.Chains-1)
		chainWarnings := make([][]string, e.cfg.Chains-1)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < e.cfg.Chains-1; i++ {
			i := i
			g.Go(func() error {
				chainCfg := e.cfg
				chainCfg.Seed = rng.DeriveSeed(e.cfg.Seed, i)
				chainCfg.Chains = 1
				eng := NewEngineWithClock(chainCfg, e.clock)
				draw, err := modelRowDrawer(m, eng.stream)
				if err != nil {
					return err
				}
				extraCh[i], chainWarnings[i] = eng.runLoop(gctx, draw, nil)
				return nil
			})
		}
		primary, warnings := e.runLoop(ctx, drawRow, onProgress)
		if err := g.Wait(); err != nil {
			return nil, err
		}
		// A shortened secondary chain still feeds the cross-chain R-hat,
		// so its warnings must reach the caller.
		for i, ws := range chainWarnings {
			for _, w := range ws {
				warnings = append(warnings, fmt.Sprintf("chain %d: %s", i+1, w))
			}
		}
		return e.buildResult(names, primary, extraCh, warnings, start), nil
	}

	kept, warnings := e.runLoop(ctx, drawRow, onProgress)
	return e.buildResult(names, kept, nil, warnings, start), nil
}

// SimulateWithEvaluator runs the shared loop over a caller-supplied
// sampler and evaluator instead of a model. The evaluator path always
// runs a single chain: the sampler is bound to the caller's stream and
// cannot be rebound to derived ones.
func (e *Engine) SimulateWithEvaluator(ctx context.Context, names []string, s sampler.Sampler, evaluator Evaluator, onProgress ProgressFunc) (*model.MonteCarloResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("evaluator simulation requires at least one variable name")
	}
	if s == nil || evaluator == nil {
		return nil, fmt.Errorf("evaluator simulation requires a sampler and an evaluator")
	}
	drawRow := func() []float64 {
		values := evaluator(s.Sample())
		row := make([]float64, len(names))
		for i, name := range names {
			row[i] = values[name]
		}
		return row
	}
	start := e.clock.Now()
	kept, warnings := e.runLoop(ctx, drawRow, onProgress)
	return e.buildResult(names, kept, nil, warnings, start), nil
}

// modelRowDrawer binds one sampler per model variable to the stream and
// returns a function drawing one row in variable order.
func modelRowDrawer(m *model.StochasticModel, stream *rng.Stream) (func() []float64, error) {
	variables := m.Variables()
	samplers := make([]sampler.Sampler, len(variables))
	for i, v := range variables {
		s, err := sampler.New(v.Spec, stream)
		if err != nil {
			return nil, err
		}
		samplers[i] = s
	}
	return func() []float64 {
		row := make([]float64, len(samplers))
		for i, s := range samplers {
			row[i] = s.Sample()
		}
		return row
	}, nil
}

// runLoop is the single iteration loop both entry points share: timeout
// check, draw, burn-in/thinning filter, progress report, early-stop
// check. All exits are successful terminal states.
func (e *Engine) runLoop(ctx context.Context, drawRow func() []float64, onProgress ProgressFunc) (model.SampleMatrix, []string) {
	cfg := e.cfg
	start := e.clock.Now()
	var warnings []string

	capacity := (cfg.Iterations-cfg.BurnIn)/cfg.Thinning + 1
	if capacity < 0 {
		capacity = 0
	}
	kept := make(model.SampleMatrix, 0, capacity)

	var prevMeans []float64
	prevAt := 0
	metric := 0.0
	completed := 0

loop:
	for i := 0; i < cfg.Iterations; i++ {
		elapsed := e.clock.Now().Sub(start)
		if elapsed > cfg.Timeout {
			warnings = append(warnings, fmt.Sprintf(
				"simulation timed out after %v (%d/%d iterations)", elapsed, i, cfg.Iterations))
			e.log.Warn("simulation timed out after %d/%d iterations", i, cfg.Iterations)
			break
		}
		if ctx != nil && ctx.Err() != nil {
			warnings = append(warnings, fmt.Sprintf(
				"simulation canceled (%d/%d iterations): %v", i, cfg.Iterations, ctx.Err()))
			break
		}

		row := drawRow()
		if i >= cfg.BurnIn && (i-cfg.BurnIn)%cfg.Thinning == 0 {
			kept = append(kept, row)
		}

		if onProgress != nil && i%cfg.ProgressInterval == 0 {
			remaining := time.Duration(0)
			if i > 0 {
				remaining = elapsed / time.Duration(i) * time.Duration(cfg.Iterations-i)
			}
			onProgress(ProgressReport{
				Completed:          i,
				Total:              cfg.Iterations,
				Percentage:         float64(i) / float64(cfg.Iterations) * 100,
				EstimatedRemaining: remaining,
				SamplesCollected:   len(kept),
				ConvergenceMetric:  metric,
			})
		}
		completed = i + 1

		// Every earlyStopWindow kept samples, compare per-variable means
		// against the means one window ago.
		if len(kept) > 0 && len(kept)%earlyStopWindow == 0 && len(kept) != prevAt {
			means := columnMeans(kept)
			if prevMeans != nil {
				metric = maxRelativeChange(means, prevMeans)
				if cfg.ConvergenceThreshold > 0 && metric < cfg.ConvergenceThreshold {
					warnings = append(warnings, fmt.Sprintf(
						"converged early after %d iterations (max relative mean change %.6f)", completed, metric))
					e.log.Debug("early stop at %d kept samples, metric %.6f", len(kept), metric)
					break loop
				}
			}
			prevMeans = means
			prevAt = len(kept)
		}
	}

	if onProgress != nil {
		onProgress(ProgressReport{
			Completed:          completed,
			Total:              cfg.Iterations,
			Percentage:         100,
			EstimatedRemaining: 0,
			SamplesCollected:   len(kept),
			ConvergenceMetric:  metric,
		})
	}
	return kept, warnings
}

// buildResult computes statistics and diagnostics over the kept matrix.
// Zero or very few rows are tolerated: every statistic has a documented
// degenerate fallback, so the result is always complete and well-typed.
func (e *Engine) buildResult(names []string, kept model.SampleMatrix, extraChains []model.SampleMatrix, warnings []string, start time.Time) *model.MonteCarloResult {
	columns := kept.Columns()

	variables := make(map[string]model.VariableStats, len(names))
	for i, name := range names {
		var col []float64
		if i < len(columns) {
			col = columns[i]
		}
		mean := stats.Mean(col)
		variance := stats.VarianceWithMean(col, mean)
		percentiles := make(map[int]float64, 5)
		for _, p := range []int{5, 25, 50, 75, 95} {
			percentiles[p], _ = stats.Percentile(col, float64(p))
		}
		variables[name] = model.VariableStats{
			Mean:        mean,
			Variance:    variance,
			StdDev:      stats.StdDev(col),
			Percentiles: percentiles,
		}
	}

	diagnostics := e.buildDiagnostics(names, columns, extraChains)

	return &model.MonteCarloResult{
		RunID:         core.RunID(core.NewID()),
		Samples:       kept,
		VariableNames: names,
		Statistics: model.SampleStatistics{
			Variables:   variables,
			Correlation: stats.CorrelationMatrix(columns),
		},
		Diagnostics:      diagnostics,
		ExecutionTime:    e.clock.Now().Sub(start),
		EffectiveSamples: diagnostics.EffectiveSampleSize,
		Success:          true,
		Warnings:         warnings,
		Manifest: model.RunManifest{
			Seed:       e.cfg.Seed,
			Iterations: e.cfg.Iterations,
			BurnIn:     e.cfg.BurnIn,
			Thinning:   e.cfg.Thinning,
			Chains:     e.cfg.Chains,
			Timeout:    e.cfg.Timeout,
		},
	}
}

func (e *Engine) buildDiagnostics(names []string, columns [][]float64, extraChains []model.SampleMatrix) model.ConvergenceDiagnostics {
	assessment := convergence.AssessConvergence(columns, convergence.DefaultThresholds())

	mcse := make(map[string]float64, len(names))
	for i, name := range names {
		if i < len(columns) {
			mcse[name] = convergence.MCSE(columns[i])
		}
	}

	var autocorr []float64
	if len(columns) > 0 && len(columns[0]) > 0 {
		maxLag := len(columns[0]) - 1
		if maxLag > storedAutocorrMaxLag {
			maxLag = storedAutocorrMaxLag
		}
		autocorr = convergence.Autocorrelation(columns[0], maxLag)
	}

	rhat := assessment.RHat
	if len(extraChains) > 0 {
		if cross := crossChainRHat(columns, extraChains); cross > rhat {
			rhat = cross
		}
	}

	return model.ConvergenceDiagnostics{
		GewekeStatistic:     assessment.Geweke,
		EffectiveSampleSize: assessment.ESS,
		RHat:                rhat,
		HasConverged:        assessment.Converged,
		Confidence:          assessment.Confidence,
		Reason:              assessment.Reason,
		Autocorrelation:     autocorr,
		MCSE:                mcse,
	}
}

// crossChainRHat reduces the per-variable multi-chain R-hat to its worst
// case across variables.
func crossChainRHat(primary [][]float64, extraChains []model.SampleMatrix) float64 {
	worst := 1.0
	for v := range primary {
		chains := make([][]float64, 0, len(extraChains)+1)
		chains = append(chains, primary[v])
		for _, m := range extraChains {
			chains = append(chains, m.Column(v))
		}
		if r := convergence.RHatMultipleChains(chains); r > worst {
			worst = r
		}
	}
	return worst
}

func columnMeans(sm model.SampleMatrix) []float64 {
	means := make([]float64, sm.Cols())
	for j := range means {
		means[j] = stats.Mean(sm.Column(j))
	}
	return means
}

// maxRelativeChange is the largest per-variable |delta|/|previous|,
// falling back to the absolute delta when the previous mean is 0.
func maxRelativeChange(current, previous []float64) float64 {
	worst := 0.0
	for i := range current {
		delta := current[i] - previous[i]
		if delta < 0 {
			delta = -delta
		}
		prev := previous[i]
		if prev < 0 {
			prev = -prev
		}
		if prev != 0 {
			delta /= prev
		}
		if delta > worst {
			worst = delta
		}
	}
	return worst
}
