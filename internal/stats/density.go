package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Bin is one equal-width histogram bucket.
type Bin struct {
	Center  float64 `json:"center"`
	Count   int     `json:"count"`
	Density float64 `json:"density"` // count / (n * width)
}

// Histogram buckets values into equal-width bins over [min, max]. Empty
// input yields no bins; single-value (or zero-spread) input collapses to
// one bin holding everything, with the width treated as 1 for density.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if bins < 1 {
		bins = 1
	}
	min, max := Min(values), Max(values)
	if min == max {
		return []Bin{{
			Center:  min,
			Count:   len(values),
			Density: 1,
		}}
	}
	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // v == max
		}
		counts[idx]++
	}
	n := float64(len(values))
	out := make([]Bin, bins)
	for i, c := range counts {
		out[i] = Bin{
			Center:  min + (float64(i)+0.5)*width,
			Count:   c,
			Density: float64(c) / (n * width),
		}
	}
	return out
}

// DensityPoint is one KDE grid evaluation.
type DensityPoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// KDE evaluates a Gaussian-kernel density estimate on an evenly spaced
// grid spanning the data plus three bandwidths each side. Bandwidth
// follows Silverman's rule, falling back to 1 for zero-variance input.
func KDE(values []float64, gridPoints int) []DensityPoint {
	if len(values) == 0 {
		return []DensityPoint{}
	}
	if gridPoints < 2 {
		gridPoints = 2
	}
	n := float64(len(values))
	h := 1.06 * StdDev(values) * math.Pow(n, -0.2)
	if h <= 0 {
		h = 1
	}
	lo := Min(values) - 3*h
	hi := Max(values) + 3*h
	step := (hi - lo) / float64(gridPoints-1)

	out := make([]DensityPoint, gridPoints)
	for i := range out {
		x := lo + float64(i)*step
		sum := 0.0
		for _, v := range values {
			sum += distuv.UnitNormal.Prob((x - v) / h)
		}
		out[i] = DensityPoint{X: x, Density: sum / (n * h)}
	}
	return out
}
