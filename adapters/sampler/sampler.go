package sampler

import (
	"math"

	"gomonte/domain/dist"
	"gomonte/internal/errors"
	"gomonte/ports"
)

// Sampler draws values from one distribution family bound to one uniform
// source. Each logical draw advances the source a fixed, documented
// number of times (usually 1; 2 per Box-Muller pair; variable only for
// the rejection-based gamma and beta constructions).
type Sampler interface {
	// Sample returns one draw
	Sample() float64

	// SampleMany returns n independent draws
	SampleMany(n int) []float64

	// Kind returns the distribution family tag
	Kind() dist.Kind

	// Params returns the construction parameters by name
	Params() map[string]float64
}

// CategorySampler is implemented by the categorical sampler, whose draws
// have labels as well as ordinal indexes.
type CategorySampler interface {
	Sampler

	// SampleCategory returns the label of one categorical draw
	SampleCategory() string
}

// New builds the sampler for a spec. Construction fails fast on invalid
// parameters or an unrecognized kind; both are fatal to the caller.
func New(spec dist.Spec, src ports.UniformSource) (Sampler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Kind {
	case dist.KindNormal:
		return &normalSampler{mean: spec.Mean, stdDev: spec.StdDev, src: src}, nil
	case dist.KindUniform:
		return &uniformSampler{min: spec.Min, max: spec.Max, src: src}, nil
	case dist.KindExponential:
		return &exponentialSampler{rate: spec.Rate, src: src}, nil
	case dist.KindPoisson:
		return &poissonSampler{lambda: spec.Lambda, src: src}, nil
	case dist.KindBinomial:
		return &binomialSampler{n: spec.N, p: spec.P, src: src}, nil
	case dist.KindCategorical:
		cs := make([]dist.Category, len(spec.Categories))
		copy(cs, spec.Categories)
		return &categoricalSampler{categories: cs, src: src}, nil
	case dist.KindBeta:
		return &betaSampler{alpha: spec.Alpha, beta: spec.Beta, src: src}, nil
	case dist.KindGamma:
		return &gammaSampler{shape: spec.Shape, scale: spec.Scale, src: src}, nil
	case dist.KindLogNormal:
		return &logNormalSampler{mu: spec.Mu, sigma: spec.Sigma, src: src}, nil
	case dist.KindTriangular:
		return &triangularSampler{min: spec.Min, mode: spec.Mode, max: spec.Max, src: src}, nil
	case dist.KindCustom:
		return &customSampler{fn: spec.Fn}, nil
	default:
		return nil, errors.Newf(errors.CodeUnknownDistribution, "unknown distribution %q", spec.Kind)
	}
}

// many collects n draws through the given sample function.
func many(n int, sample func() float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = sample()
	}
	return out
}

// boxMullerPair turns two uniforms into two independent standard normal
// deviates. u1 is flipped into (0,1] so the log never sees zero.
func boxMullerPair(src ports.UniformSource) (float64, float64) {
	u1 := 1 - src.Next()
	u2 := src.Next()
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}
