package stats

import (
	"math"
	"sort"
)

// Interval is a closed credible interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns the interval length.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// EqualTailedInterval cuts prob mass symmetrically off both tails:
// [percentile((1-prob)/2*100), percentile((1+prob)/2*100)].
func EqualTailedInterval(values []float64, prob float64) Interval {
	if prob <= 0 || prob > 1 {
		prob = 0.95
	}
	return Interval{
		Lower: percentileOf(values, (1-prob)/2*100),
		Upper: percentileOf(values, (1+prob)/2*100),
	}
}

// HPDInterval slides a window of ceil(prob*n) sorted values and returns
// the narrowest one, which is the highest-posterior-density interval
// rather than a plain quantile cut. {0,0} for empty input.
func HPDInterval(values []float64, prob float64) Interval {
	if len(values) == 0 {
		return Interval{}
	}
	if prob <= 0 || prob > 1 {
		prob = 0.95
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	window := int(math.Ceil(prob * float64(len(sorted))))
	if window < 1 {
		window = 1
	}
	if window > len(sorted) {
		window = len(sorted)
	}

	best := Interval{Lower: sorted[0], Upper: sorted[window-1]}
	for i := 1; i+window <= len(sorted); i++ {
		candidate := Interval{Lower: sorted[i], Upper: sorted[i+window-1]}
		if candidate.Width() < best.Width() {
			best = candidate
		}
	}
	return best
}

// PosteriorSummary bundles one variable's posterior description.
type PosteriorSummary struct {
	Name        string   `json:"name"`
	Mean        float64  `json:"mean"`
	StdDev      float64  `json:"std_dev"`
	Median      float64  `json:"median"`
	EqualTailed Interval `json:"equal_tailed"`
	HPD         Interval `json:"hpd"`
	ESS         int      `json:"ess"`
}

// ESSFunc estimates the effective sample size of a chain. The stats
// package stays leaf-level by taking the estimator as a parameter; the
// convergence package supplies the real one. A nil estimator falls back
// to the raw sample count.
type ESSFunc func(values []float64) int

// SummarizePosterior describes one named variable's kept samples at the
// given credible mass (0.95 when prob is out of range).
func SummarizePosterior(name string, values []float64, prob float64, ess ESSFunc) PosteriorSummary {
	n := len(values)
	essValue := n
	if ess != nil {
		essValue = ess(values)
	}
	return PosteriorSummary{
		Name:        name,
		Mean:        Mean(values),
		StdDev:      StdDev(values),
		Median:      Median(values),
		EqualTailed: EqualTailedInterval(values, prob),
		HPD:         HPDInterval(values, prob),
		ESS:         essValue,
	}
}

// SummarizeAllPosteriors summarizes every named column, in order.
// Columns without a name (or names without a column) are skipped.
func SummarizeAllPosteriors(names []string, columns [][]float64, prob float64, ess ESSFunc) []PosteriorSummary {
	n := len(names)
	if len(columns) < n {
		n = len(columns)
	}
	out := make([]PosteriorSummary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SummarizePosterior(names[i], columns[i], prob, ess))
	}
	return out
}

// ProbExceedsThreshold is the empirical frequency of values strictly
// above the threshold, 0 for empty input.
func ProbExceedsThreshold(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

// ProbInRange is the empirical frequency of values inside [lo, hi].
func ProbInRange(values []float64, lo, hi float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v >= lo && v <= hi {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

// ProbAExceedsB is the paired empirical frequency of a[i] > b[i]. The
// comparison is paired, not independent, so mismatched lengths return 0.
func ProbAExceedsB(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	count := 0
	for i := range a {
		if a[i] > b[i] {
			count++
		}
	}
	return float64(count) / float64(len(a))
}
