// Package stats provides the pure statistical primitives the simulation
// engine summarizes with. Degenerate input (empty or size-1 slices)
// returns a documented fallback value instead of an error; the only
// function that can fail is Percentile, for p outside [0,100].
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"gomonte/internal/errors"
)

// modeBins is the fixed histogram resolution Mode buckets continuous
// data into.
const modeBins = 10

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance (divides by n), 0 for empty
// input.
func Variance(values []float64) float64 {
	return VarianceWithMean(values, Mean(values))
}

// VarianceWithMean computes the population variance against a
// precomputed mean, saving one pass when the caller already has it.
func VarianceWithMean(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Min returns the smallest value, 0 for empty input.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v, _ := mstats.Min(values)
	return v
}

// Max returns the largest value, 0 for empty input.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v, _ := mstats.Max(values)
	return v
}

// Median returns the middle of the sorted values; for even-length input
// it averages the two middle elements. 0 for empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v, _ := mstats.Median(values)
	return v
}

// Percentile returns sorted[floor(p/100*n)] over a sorted copy, clamped
// to the last element, so p=0 is the minimum and p=100 the maximum. It
// fails for p outside [0,100] and returns 0 for empty input.
func Percentile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, errors.Newf(errors.CodeInvalidParams, "percentile must be in [0,100], got %v", p)
	}
	if len(values) == 0 {
		return 0, nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Floor(p / 100 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}

// percentileOf is Percentile for callers that already validated p.
func percentileOf(values []float64, p float64) float64 {
	v, _ := Percentile(values, p)
	return v
}

// Skewness returns the standardized third moment, 0 when n < 3 or the
// variance is 0 (insufficient data, not an error).
func Skewness(values []float64) float64 {
	if len(values) < 3 {
		return 0
	}
	mean := Mean(values)
	sd := math.Sqrt(VarianceWithMean(values, mean))
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := (v - mean) / sd
		sum += d * d * d
	}
	return sum / float64(len(values))
}

// Kurtosis returns the standardized fourth moment (3 for a normal
// distribution), 0 when n < 4 or the variance is 0.
func Kurtosis(values []float64) float64 {
	if len(values) < 4 {
		return 0
	}
	mean := Mean(values)
	sd := math.Sqrt(VarianceWithMean(values, mean))
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := (v - mean) / sd
		sum += d * d * d * d
	}
	return sum / float64(len(values))
}

// Mode buckets continuous data into a fixed number of histogram bins and
// returns the center of the most populated bin. Tiny or degenerate input
// falls back to the exact most frequent value.
func Mode(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min, max := Min(values), Max(values)
	if len(values) < modeBins || min == max {
		return exactMode(values)
	}
	width := (max - min) / modeBins
	counts := make([]int, modeBins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= modeBins {
			idx = modeBins - 1
		}
		counts[idx]++
	}
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return min + (float64(best)+0.5)*width
}

func exactMode(values []float64) float64 {
	freq := make(map[float64]int, len(values))
	best, bestCount := values[0], 0
	for _, v := range values {
		freq[v]++
		if freq[v] > bestCount {
			best, bestCount = v, freq[v]
		}
	}
	return best
}

// Covariance returns the population covariance, 0 (never NaN) for
// mismatched lengths or empty input.
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	mx, my := Mean(x), Mean(y)
	sum := 0.0
	for i := range x {
		sum += (x[i] - mx) * (y[i] - my)
	}
	return sum / float64(len(x))
}

// Correlation returns the Pearson correlation, 0 (never NaN) for
// mismatched lengths or zero-variance input. The result is clamped to
// [-1, 1] against floating-point drift.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if Variance(x) == 0 || Variance(y) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// CovarianceMatrix returns the square population covariance matrix over
// the given columns.
func CovarianceMatrix(columns [][]float64) [][]float64 {
	m := make([][]float64, len(columns))
	for i := range columns {
		m[i] = make([]float64, len(columns))
		for j := range columns {
			m[i][j] = Covariance(columns[i], columns[j])
		}
	}
	return m
}

// CorrelationMatrix returns the square correlation matrix over the given
// columns, with 1s on the diagonal.
func CorrelationMatrix(columns [][]float64) [][]float64 {
	m := make([][]float64, len(columns))
	for i := range columns {
		m[i] = make([]float64, len(columns))
		for j := range columns {
			if i == j {
				m[i][j] = 1
				continue
			}
			m[i][j] = Correlation(columns[i], columns[j])
		}
	}
	return m
}
