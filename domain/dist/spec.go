package dist

import (
	"math"

	"gomonte/internal/errors"
)

// Kind tags a distribution family. The set is closed: the sampler
// factory rejects anything it does not recognize.
type Kind string

const (
	KindNormal      Kind = "normal"
	KindUniform     Kind = "uniform"
	KindExponential Kind = "exponential"
	KindPoisson     Kind = "poisson"
	KindBinomial    Kind = "binomial"
	KindCategorical Kind = "categorical"
	KindBeta        Kind = "beta"
	KindGamma       Kind = "gamma"
	KindLogNormal   Kind = "lognormal"
	KindTriangular  Kind = "triangular"
	KindCustom      Kind = "custom"
)

// weightTolerance is how far categorical weights may drift from summing
// to exactly 1 before construction fails.
const weightTolerance = 1e-6

// Category is one labeled outcome of a categorical distribution.
// Order matters: the cumulative-sum draw walks categories in slice order,
// so the same seed always resolves to the same label.
type Category struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Spec is a closed tagged variant describing one distribution family and
// its parameters. Only the fields relevant to Kind are meaningful; the
// constructors below are the supported way to build one.
type Spec struct {
	Kind Kind `json:"kind"`

	// normal / lognormal
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`
	Mu     float64 `json:"mu,omitempty"`
	Sigma  float64 `json:"sigma,omitempty"`

	// uniform / triangular
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mode float64 `json:"mode,omitempty"`

	// exponential / poisson
	Rate   float64 `json:"rate,omitempty"`
	Lambda float64 `json:"lambda,omitempty"`

	// binomial
	N int     `json:"n,omitempty"`
	P float64 `json:"p,omitempty"`

	// beta / gamma
	Alpha float64 `json:"alpha,omitempty"`
	Beta  float64 `json:"beta,omitempty"`
	Shape float64 `json:"shape,omitempty"`
	Scale float64 `json:"scale,omitempty"`

	// categorical
	Categories []Category `json:"categories,omitempty"`

	// custom: a caller-supplied nullary sampling function, used verbatim
	Fn func() float64 `json:"-"`
}

// Normal describes a normal distribution with the given mean and
// standard deviation (stdDev > 0).
func Normal(mean, stdDev float64) Spec {
	return Spec{Kind: KindNormal, Mean: mean, StdDev: stdDev}
}

// Uniform describes a uniform distribution on [min, max).
func Uniform(min, max float64) Spec {
	return Spec{Kind: KindUniform, Min: min, Max: max}
}

// Exponential describes an exponential distribution with rate > 0.
func Exponential(rate float64) Spec {
	return Spec{Kind: KindExponential, Rate: rate}
}

// Poisson describes a Poisson distribution with lambda > 0.
func Poisson(lambda float64) Spec {
	return Spec{Kind: KindPoisson, Lambda: lambda}
}

// Binomial describes a binomial distribution over n trials with
// success probability p.
func Binomial(n int, p float64) Spec {
	return Spec{Kind: KindBinomial, N: n, P: p}
}

// Categorical describes a discrete distribution over labeled categories
// whose weights must sum to 1.
func Categorical(categories []Category) Spec {
	return Spec{Kind: KindCategorical, Categories: categories}
}

// BetaDist describes a beta distribution with alpha, beta > 0.
func BetaDist(alpha, beta float64) Spec {
	return Spec{Kind: KindBeta, Alpha: alpha, Beta: beta}
}

// GammaDist describes a gamma distribution with shape, scale > 0.
func GammaDist(shape, scale float64) Spec {
	return Spec{Kind: KindGamma, Shape: shape, Scale: scale}
}

// LogNormal describes a lognormal distribution: exp(Normal(mu, sigma)).
func LogNormal(mu, sigma float64) Spec {
	return Spec{Kind: KindLogNormal, Mu: mu, Sigma: sigma}
}

// Triangular describes a triangular distribution with
// min <= mode <= max and min < max.
func Triangular(min, mode, max float64) Spec {
	return Spec{Kind: KindTriangular, Min: min, Mode: mode, Max: max}
}

// Custom wraps a caller-supplied nullary sampling function.
func Custom(fn func() float64) Spec {
	return Spec{Kind: KindCustom, Fn: fn}
}

// Validate checks the parameters for the tagged family. A non-nil error
// is fatal: there is no internal recovery from bad parameters.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindNormal:
		if s.StdDev <= 0 || math.IsNaN(s.StdDev) {
			return errors.Newf(errors.CodeInvalidParams, "normal: stdDev must be > 0, got %v", s.StdDev)
		}
	case KindUniform:
		if !(s.Min < s.Max) {
			return errors.Newf(errors.CodeInvalidParams, "uniform: min (%v) must be < max (%v)", s.Min, s.Max)
		}
	case KindExponential:
		if s.Rate <= 0 || math.IsNaN(s.Rate) {
			return errors.Newf(errors.CodeInvalidParams, "exponential: rate must be > 0, got %v", s.Rate)
		}
	case KindPoisson:
		if s.Lambda <= 0 || math.IsNaN(s.Lambda) {
			return errors.Newf(errors.CodeInvalidParams, "poisson: lambda must be > 0, got %v", s.Lambda)
		}
	case KindBinomial:
		if s.N <= 0 {
			return errors.Newf(errors.CodeInvalidParams, "binomial: n must be a positive integer, got %d", s.N)
		}
		if s.P < 0 || s.P > 1 || math.IsNaN(s.P) {
			return errors.Newf(errors.CodeInvalidParams, "binomial: p must be in [0,1], got %v", s.P)
		}
	case KindCategorical:
		return validateCategories(s.Categories)
	case KindBeta:
		if s.Alpha <= 0 || s.Beta <= 0 {
			return errors.Newf(errors.CodeInvalidParams, "beta: alpha and beta must be > 0, got alpha=%v beta=%v", s.Alpha, s.Beta)
		}
	case KindGamma:
		if s.Shape <= 0 || s.Scale <= 0 {
			return errors.Newf(errors.CodeInvalidParams, "gamma: shape and scale must be > 0, got shape=%v scale=%v", s.Shape, s.Scale)
		}
	case KindLogNormal:
		if s.Sigma <= 0 || math.IsNaN(s.Sigma) {
			return errors.Newf(errors.CodeInvalidParams, "lognormal: sigma must be > 0, got %v", s.Sigma)
		}
	case KindTriangular:
		if !(s.Min < s.Max) {
			return errors.Newf(errors.CodeInvalidParams, "triangular: min (%v) must be < max (%v)", s.Min, s.Max)
		}
		if s.Mode < s.Min || s.Mode > s.Max {
			return errors.Newf(errors.CodeInvalidParams, "triangular: mode (%v) must lie in [min, max]", s.Mode)
		}
	case KindCustom:
		if s.Fn == nil {
			return errors.New(errors.CodeInvalidParams, "custom: sampling function is nil")
		}
	default:
		return errors.Newf(errors.CodeUnknownDistribution, "unknown distribution %q", s.Kind)
	}
	return nil
}

func validateCategories(categories []Category) error {
	if len(categories) == 0 {
		return errors.New(errors.CodeBadWeights, "categorical: at least one category required")
	}
	sum := 0.0
	for _, c := range categories {
		if c.Weight < 0 || math.IsNaN(c.Weight) {
			return errors.Newf(errors.CodeBadWeights, "categorical: weight for %q must be >= 0, got %v", c.Label, c.Weight)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.Newf(errors.CodeBadWeights, "categorical: weights must sum to 1, got %v", sum)
	}
	return nil
}
