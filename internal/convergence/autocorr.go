// Package convergence computes MCMC chain-quality diagnostics over kept
// sample columns. Short chains, constant series, and single chains are
// documented degenerate cases with defined fallback values, never errors.
package convergence

import (
	"math"

	"gomonte/internal/stats"
)

// iatMaxLag caps how deep the integrated-autocorrelation-time scan can
// look; the initial-monotone pair sum terminates far earlier for any
// reasonably mixed chain.
const iatMaxLag = 1000

// Autocorrelation returns the normalized autocorrelation function up to
// maxLag (clamped to n-1). Lag 0 is always 1. A constant series (zero
// variance) yields an all-ones vector; there is never a division by
// zero. Empty input yields an empty vector.
func Autocorrelation(values []float64, maxLag int) []float64 {
	n := len(values)
	if n == 0 {
		return []float64{}
	}
	if maxLag < 0 {
		maxLag = 0
	}
	if maxLag > n-1 {
		maxLag = n - 1
	}
	acf := make([]float64, maxLag+1)
	acf[0] = 1

	mean := stats.Mean(values)
	c0 := stats.VarianceWithMean(values, mean)
	if c0 == 0 {
		for k := range acf {
			acf[k] = 1
		}
		return acf
	}
	for k := 1; k <= maxLag; k++ {
		sum := 0.0
		for i := 0; i < n-k; i++ {
			sum += (values[i] - mean) * (values[i+k] - mean)
		}
		acf[k] = sum / float64(n) / c0
	}
	return acf
}

// IntegratedAutocorrelationTime estimates the IAT with the
// initial-monotone-sequence rule: consecutive ACF pairs (lag 1+2,
// 3+4, ...) are summed while the pair sum stays positive, and the result
// is 1 + 2*sum, clamped to a minimum of 1.
func IntegratedAutocorrelationTime(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 1
	}
	maxLag := n - 1
	if maxLag > iatMaxLag {
		maxLag = iatMaxLag
	}
	acf := Autocorrelation(values, maxLag)

	sum := 0.0
	for t := 1; t+1 < len(acf); t += 2 {
		pair := acf[t] + acf[t+1]
		if pair <= 0 {
			break
		}
		sum += pair
	}
	iat := 1 + 2*sum
	if iat < 1 {
		return 1
	}
	return iat
}

// EffectiveSampleSize is floor(n / IAT), never less than 1.
func EffectiveSampleSize(values []float64) int {
	n := len(values)
	if n == 0 {
		return 1
	}
	ess := int(math.Floor(float64(n) / IntegratedAutocorrelationTime(values)))
	if ess < 1 {
		return 1
	}
	return ess
}

// MinEffectiveSampleSize reduces per-column ESS to the minimum: the
// convergence verdict is only as strong as the worst-mixing variable.
func MinEffectiveSampleSize(columns [][]float64) int {
	if len(columns) == 0 {
		return 1
	}
	min := EffectiveSampleSize(columns[0])
	for _, col := range columns[1:] {
		if ess := EffectiveSampleSize(col); ess < min {
			min = ess
		}
	}
	return min
}

// MCSE is the Monte Carlo standard error of the sample mean,
// stdDev / sqrt(ESS).
func MCSE(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stats.StdDev(values) / math.Sqrt(float64(EffectiveSampleSize(values)))
}
