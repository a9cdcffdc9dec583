package model

import (
	"time"

	"gomonte/domain/core"
)

// VariableStats bundles per-variable descriptive statistics.
type VariableStats struct {
	Mean        float64         `json:"mean"`
	Variance    float64         `json:"variance"`
	StdDev      float64         `json:"std_dev"`
	Percentiles map[int]float64 `json:"percentiles"` // keyed by percentile (5, 25, 50, 75, 95)
}

// SampleStatistics holds the descriptive summary of a kept sample matrix.
type SampleStatistics struct {
	Variables   map[string]VariableStats `json:"variables"`
	Correlation [][]float64              `json:"correlation"` // variable order matches the result's Names
}

// ConvergenceDiagnostics aggregates the chain-quality verdict computed
// over the kept matrix. Worst-variable semantics throughout: the verdict
// is only as strong as the worst-mixing variable.
type ConvergenceDiagnostics struct {
	GewekeStatistic     float64            `json:"geweke_statistic"`
	EffectiveSampleSize int                `json:"effective_sample_size"`
	RHat                float64            `json:"r_hat"`
	HasConverged        bool               `json:"has_converged"`
	Confidence          float64            `json:"confidence"`
	Reason              string             `json:"reason,omitempty"`
	Autocorrelation     []float64          `json:"autocorrelation,omitempty"` // lead variable
	MCSE                map[string]float64 `json:"mcse,omitempty"`            // per variable
}

// RunManifest echoes the reproducibility-relevant inputs of a run.
type RunManifest struct {
	Seed       int64         `json:"seed"`
	Iterations int           `json:"iterations"`
	BurnIn     int           `json:"burn_in"`
	Thinning   int           `json:"thinning"`
	Chains     int           `json:"chains"`
	Timeout    time.Duration `json:"timeout"`
}

// MonteCarloResult is the sole artifact a simulation produces. A result
// is always complete and well-typed: timeouts and short chains surface
// as warnings and degenerate-input fallbacks, never as missing fields.
type MonteCarloResult struct {
	RunID            core.RunID             `json:"run_id"`
	Samples          SampleMatrix           `json:"samples"`
	VariableNames    []string               `json:"variable_names"`
	Statistics       SampleStatistics       `json:"statistics"`
	Diagnostics      ConvergenceDiagnostics `json:"diagnostics"`
	ExecutionTime    time.Duration          `json:"execution_time"`
	EffectiveSamples int                    `json:"effective_samples"`
	Success          bool                   `json:"success"`
	Warnings         []string               `json:"warnings,omitempty"`
	Manifest         RunManifest            `json:"manifest"`
}

// ColumnFor returns the kept column for a named variable, or nil if the
// name is not part of the run.
func (r *MonteCarloResult) ColumnFor(name string) []float64 {
	for i, n := range r.VariableNames {
		if n == name {
			return r.Samples.Column(i)
		}
	}
	return nil
}
