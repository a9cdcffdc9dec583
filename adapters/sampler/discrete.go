package sampler

import (
	"math"

	"gomonte/domain/dist"
	"gomonte/ports"
)

// poissonNormalCutoff is the lambda at which Knuth's product algorithm
// gives way to the clamped normal approximation.
const poissonNormalCutoff = 30

// poissonSampler uses Knuth's algorithm for small lambda and a rounded,
// clamped Normal(lambda, sqrt(lambda)) above the cutoff. The small-lambda
// path consumes a variable number of uniforms (about lambda+1 on
// average); the approximation path consumes exactly two per draw.
type poissonSampler struct {
	lambda float64
	src    ports.UniformSource
}

func (s *poissonSampler) Sample() float64 {
	if s.lambda < poissonNormalCutoff {
		threshold := math.Exp(-s.lambda)
		k := 0
		p := 1.0
		for {
			p *= s.src.Next()
			if p < threshold {
				return float64(k)
			}
			k++
		}
	}
	z, _ := boxMullerPair(s.src)
	v := math.Round(s.lambda + math.Sqrt(s.lambda)*z)
	if v < 0 {
		v = 0
	}
	return v
}

func (s *poissonSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *poissonSampler) Kind() dist.Kind            { return dist.KindPoisson }
func (s *poissonSampler) Params() map[string]float64 {
	return map[string]float64{"lambda": s.lambda}
}

// binomialSampler sums n Bernoulli(p) draws, one uniform per trial.
// Results are integers in [0, n].
type binomialSampler struct {
	n   int
	p   float64
	src ports.UniformSource
}

func (s *binomialSampler) Sample() float64 {
	successes := 0
	for i := 0; i < s.n; i++ {
		if s.src.Next() < s.p {
			successes++
		}
	}
	return float64(successes)
}

func (s *binomialSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *binomialSampler) Kind() dist.Kind            { return dist.KindBinomial }
func (s *binomialSampler) Params() map[string]float64 {
	return map[string]float64{"n": float64(s.n), "p": s.p}
}

// categoricalSampler draws by cumulative sum over the ordered weights,
// one uniform per draw. Sample returns the ordinal index of the chosen
// category; SampleCategory returns its label.
type categoricalSampler struct {
	categories []dist.Category
	src        ports.UniformSource
}

func (s *categoricalSampler) draw() int {
	u := s.src.Next()
	cum := 0.0
	for i, c := range s.categories {
		cum += c.Weight
		if u < cum {
			return i
		}
	}
	// Rounding slack at the top of the cumulative sum lands on the last
	// category.
	return len(s.categories) - 1
}

func (s *categoricalSampler) Sample() float64 {
	return float64(s.draw())
}

func (s *categoricalSampler) SampleCategory() string {
	return s.categories[s.draw()].Label
}

func (s *categoricalSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *categoricalSampler) Kind() dist.Kind            { return dist.KindCategorical }
func (s *categoricalSampler) Params() map[string]float64 {
	params := make(map[string]float64, len(s.categories))
	for _, c := range s.categories {
		params[c.Label] = c.Weight
	}
	return params
}

// customSampler invokes the caller-supplied function verbatim; it never
// touches the uniform stream.
type customSampler struct {
	fn func() float64
}

func (s *customSampler) Sample() float64            { return s.fn() }
func (s *customSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *customSampler) Kind() dist.Kind            { return dist.KindCustom }
func (s *customSampler) Params() map[string]float64 { return map[string]float64{} }
