package convergence

import (
	"math"

	"gomonte/internal/stats"
)

// Default window fractions for the Geweke comparison.
const (
	gewekeFirstPortion = 0.1
	gewekeLastPortion  = 0.5
	gewekeMinSamples   = 20
)

// GewekeStatistic is the z-score comparing the mean of the early window
// against the mean of the late window with a pooled standard error.
// Portions outside (0,1) fall back to the 10%/50% defaults. Chains
// shorter than 20 samples, overlapping windows, and zero pooled variance
// all return 0: defined "no signal", not an error.
func GewekeStatistic(values []float64, firstPortion, lastPortion float64) float64 {
	n := len(values)
	if n < gewekeMinSamples {
		return 0
	}
	if firstPortion <= 0 || firstPortion >= 1 {
		firstPortion = gewekeFirstPortion
	}
	if lastPortion <= 0 || lastPortion >= 1 {
		lastPortion = gewekeLastPortion
	}

	nFirst := int(firstPortion * float64(n))
	startLast := n - int(lastPortion*float64(n))
	if nFirst < 2 || startLast >= n || nFirst >= startLast {
		return 0
	}

	first := values[:nFirst]
	last := values[startLast:]

	meanFirst := stats.Mean(first)
	meanLast := stats.Mean(last)
	se := math.Sqrt(
		stats.VarianceWithMean(first, meanFirst)/float64(len(first)) +
			stats.VarianceWithMean(last, meanLast)/float64(len(last)),
	)
	if se == 0 {
		return 0
	}
	return (meanFirst - meanLast) / se
}

// RHatSingleChain splits one chain into two equal halves and computes
// the multi-chain statistic over them.
func RHatSingleChain(values []float64) float64 {
	n := len(values)
	if n < 4 {
		return 1
	}
	half := n / 2
	return RHatMultipleChains([][]float64{values[:half], values[half : 2*half]})
}

// RHatMultipleChains is the Gelman-Rubin statistic: within-chain
// variance W (mean of per-chain variances), between-chain variance
// B = n/(m-1) * variance(chain means), pooled variance
// ((n-1)/n)*W + B/n, R-hat = sqrt(pooled/W). Chains are truncated to the
// shortest length. Fewer than 2 chains or W = 0 returns 1: the
// degenerate case is treated as converged.
func RHatMultipleChains(chains [][]float64) float64 {
	m := len(chains)
	if m < 2 {
		return 1
	}
	n := len(chains[0])
	for _, c := range chains[1:] {
		if len(c) < n {
			n = len(c)
		}
	}
	if n < 2 {
		return 1
	}

	means := make([]float64, m)
	within := 0.0
	for i, c := range chains {
		c = c[:n]
		means[i] = stats.Mean(c)
		within += stats.VarianceWithMean(c, means[i])
	}
	within /= float64(m)
	if within == 0 {
		return 1
	}

	nf := float64(n)
	between := nf / float64(m-1) * stats.Variance(means)
	pooled := (nf-1)/nf*within + between/nf
	return math.Sqrt(pooled / within)
}
