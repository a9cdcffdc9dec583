package sampler

import (
	"math"

	"gomonte/domain/dist"
	"gomonte/ports"
)

// normalSampler draws via the Box-Muller transform. The second deviate of
// each pair is cached and returned on the next call without consuming new
// uniforms, so a pair of draws costs exactly two uniforms.
type normalSampler struct {
	mean, stdDev float64
	src          ports.UniformSource
	spare        float64
	hasSpare     bool
}

func (s *normalSampler) Sample() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.mean + s.stdDev*s.spare
	}
	z0, z1 := boxMullerPair(s.src)
	s.spare, s.hasSpare = z1, true
	return s.mean + s.stdDev*z0
}

func (s *normalSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *normalSampler) Kind() dist.Kind            { return dist.KindNormal }
func (s *normalSampler) Params() map[string]float64 {
	return map[string]float64{"mean": s.mean, "std_dev": s.stdDev}
}

// uniformSampler maps one uniform linearly into [min, max).
type uniformSampler struct {
	min, max float64
	src      ports.UniformSource
}

func (s *uniformSampler) Sample() float64 {
	return s.min + s.src.Next()*(s.max-s.min)
}

func (s *uniformSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *uniformSampler) Kind() dist.Kind            { return dist.KindUniform }
func (s *uniformSampler) Params() map[string]float64 {
	return map[string]float64{"min": s.min, "max": s.max}
}

// exponentialSampler draws by inverse CDF, one uniform per draw.
type exponentialSampler struct {
	rate float64
	src  ports.UniformSource
}

func (s *exponentialSampler) Sample() float64 {
	return -math.Log(1-s.src.Next()) / s.rate
}

func (s *exponentialSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *exponentialSampler) Kind() dist.Kind            { return dist.KindExponential }
func (s *exponentialSampler) Params() map[string]float64 {
	return map[string]float64{"rate": s.rate}
}

// logNormalSampler is exp(Normal(mu, sigma)) with its own spare cache.
// The spare is exclusive mutable state; it is never shared with any
// normal sampler bound to the same stream.
type logNormalSampler struct {
	mu, sigma float64
	src       ports.UniformSource
	spare     float64
	hasSpare  bool
}

func (s *logNormalSampler) Sample() float64 {
	var z float64
	if s.hasSpare {
		s.hasSpare = false
		z = s.spare
	} else {
		var z1 float64
		z, z1 = boxMullerPair(s.src)
		s.spare, s.hasSpare = z1, true
	}
	return math.Exp(s.mu + s.sigma*z)
}

func (s *logNormalSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *logNormalSampler) Kind() dist.Kind            { return dist.KindLogNormal }
func (s *logNormalSampler) Params() map[string]float64 {
	return map[string]float64{"mu": s.mu, "sigma": s.sigma}
}

// triangularSampler draws by the piecewise inverse CDF, one uniform per
// draw.
type triangularSampler struct {
	min, mode, max float64
	src            ports.UniformSource
}

func (s *triangularSampler) Sample() float64 {
	u := s.src.Next()
	span := s.max - s.min
	cut := (s.mode - s.min) / span
	if u < cut {
		return s.min + math.Sqrt(u*span*(s.mode-s.min))
	}
	return s.max - math.Sqrt((1-u)*span*(s.max-s.mode))
}

func (s *triangularSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *triangularSampler) Kind() dist.Kind            { return dist.KindTriangular }
func (s *triangularSampler) Params() map[string]float64 {
	return map[string]float64{"min": s.min, "mode": s.mode, "max": s.max}
}

// gammaSampler uses Marsaglia-Tsang squeeze rejection for shape >= 1 and
// the U^(1/shape) boost below that. Rejection means the uniforms consumed
// per draw vary; determinism still holds for a fixed seed because every
// retry consumes from the same bound stream.
type gammaSampler struct {
	shape, scale float64
	src          ports.UniformSource
}

func (s *gammaSampler) Sample() float64 {
	return s.scale * gammaDraw(s.src, s.shape)
}

func (s *gammaSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *gammaSampler) Kind() dist.Kind            { return dist.KindGamma }
func (s *gammaSampler) Params() map[string]float64 {
	return map[string]float64{"shape": s.shape, "scale": s.scale}
}

// gammaDraw samples Gamma(shape, 1).
func gammaDraw(src ports.UniformSource, shape float64) float64 {
	if shape < 1 {
		// boost: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := 1 - src.Next() // (0,1]
		return gammaDraw(src, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		z, _ := boxMullerPair(src)
		v := 1 + c*z
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := 1 - src.Next() // (0,1]
		if math.Log(u) < 0.5*z*z+d-d*v+d*math.Log(v) {
			return d * v
		}
	}
}

// betaSampler draws as X/(X+Y) with X~Gamma(alpha,1) and Y~Gamma(beta,1);
// outputs lie in the open interval (0,1).
type betaSampler struct {
	alpha, beta float64
	src         ports.UniformSource
}

func (s *betaSampler) Sample() float64 {
	x := gammaDraw(s.src, s.alpha)
	y := gammaDraw(s.src, s.beta)
	sum := x + y
	if sum == 0 {
		return 0.5
	}
	b := x / sum
	// Keep strictly inside (0,1); the density vanishes at the edges.
	if b <= 0 {
		return math.SmallestNonzeroFloat64
	}
	if b >= 1 {
		return 1 - 1e-16
	}
	return b
}

func (s *betaSampler) SampleMany(n int) []float64 { return many(n, s.Sample) }
func (s *betaSampler) Kind() dist.Kind            { return dist.KindBeta }
func (s *betaSampler) Params() map[string]float64 {
	return map[string]float64{"alpha": s.alpha, "beta": s.beta}
}
