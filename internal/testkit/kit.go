// Package testkit generates deterministic synthetic chains for tests:
// well-mixed series, sticky autocorrelated series, drifting series, and
// correlated pairs with known structure.
package testkit

import (
	"math"

	"gomonte/adapters/rng"
	"gomonte/adapters/sampler"
	"gomonte/domain/dist"
)

// WellMixedChain returns n iid Normal(mean, stdDev) draws from a seeded
// stream, the best-case chain every diagnostic should approve of.
func WellMixedChain(n int, mean, stdDev float64, seed int64) []float64 {
	s, err := sampler.New(dist.Normal(mean, stdDev), rng.NewStream(seed))
	if err != nil {
		panic(err) // parameters are fixed by the caller's test
	}
	return s.SampleMany(n)
}

// AR1Chain returns an order-1 autoregressive series
// x[t] = phi*x[t-1] + noise. phi close to 1 gives a sticky, slowly
// mixing chain with a large integrated autocorrelation time.
func AR1Chain(n int, phi, noiseStdDev float64, seed int64) []float64 {
	s, err := sampler.New(dist.Normal(0, noiseStdDev), rng.NewStream(seed))
	if err != nil {
		panic(err)
	}
	out := make([]float64, n)
	x := 0.0
	for i := range out {
		x = phi*x + s.Sample()
		out[i] = x
	}
	return out
}

// TrendingChain returns a drifting series start + slope*t plus a little
// sinusoidal wobble, guaranteed to fail the Geweke check for any
// meaningful slope.
func TrendingChain(n int, start, slope float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + slope*float64(i) + 0.1*math.Sin(float64(i))
	}
	return out
}

// ConstantChain returns n copies of v, the zero-variance degenerate
// case.
func ConstantChain(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// CorrelatedPair returns x iid normal and y = 2x + c, a pair with exact
// correlation 1 up to floating point.
func CorrelatedPair(n int, c float64, seed int64) (x, y []float64) {
	x = WellMixedChain(n, 0, 1, seed)
	y = make([]float64, n)
	for i := range x {
		y[i] = 2*x[i] + c
	}
	return x, y
}
