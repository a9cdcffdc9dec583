package app

import (
	"gomonte/domain/model"
	"gomonte/internal/convergence"
	"gomonte/internal/stats"
)

// Posterior helpers over a finished result. Unknown variable names
// resolve to empty columns, which the stats layer treats as documented
// degenerate input.

// SummarizeResult builds posterior summaries for every variable of a
// run at the given credible mass, with the autocorrelation-adjusted ESS.
func SummarizeResult(r *model.MonteCarloResult, prob float64) []stats.PosteriorSummary {
	return stats.SummarizeAllPosteriors(r.VariableNames, r.Samples.Columns(), prob, convergence.EffectiveSampleSize)
}

// ProbExceeds is the empirical probability that the named variable
// exceeds the threshold.
func ProbExceeds(r *model.MonteCarloResult, name string, threshold float64) float64 {
	return stats.ProbExceedsThreshold(r.ColumnFor(name), threshold)
}

// ProbInRange is the empirical probability that the named variable lies
// in [lo, hi].
func ProbInRange(r *model.MonteCarloResult, name string, lo, hi float64) float64 {
	return stats.ProbInRange(r.ColumnFor(name), lo, hi)
}

// ProbExceedsVariable is the paired empirical probability that variable
// a exceeds variable b row by row.
func ProbExceedsVariable(r *model.MonteCarloResult, a, b string) float64 {
	return stats.ProbAExceedsB(r.ColumnFor(a), r.ColumnFor(b))
}
