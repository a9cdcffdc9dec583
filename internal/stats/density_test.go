package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Histogram(nil, 10))
	})

	t.Run("single value collapses to one bin", func(t *testing.T) {
		bins := Histogram([]float64{4, 4, 4}, 10)
		require.Len(t, bins, 1)
		assert.Equal(t, 4.0, bins[0].Center)
		assert.Equal(t, 3, bins[0].Count)
		assert.Equal(t, 1.0, bins[0].Density)
	})

	t.Run("counts and max placement", func(t *testing.T) {
		values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		bins := Histogram(values, 5) // width 2
		require.Len(t, bins, 5)

		total := 0
		for _, b := range bins {
			total += b.Count
		}
		assert.Equal(t, len(values), total)
		// The maximum lands in the last bin, not out of range.
		assert.Equal(t, 3, bins[4].Count) // 8, 9, 10
		assert.Equal(t, 9.0, bins[4].Center)
	})

	t.Run("density integrates to one", func(t *testing.T) {
		values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
		bins := Histogram(values, 4)
		width := bins[1].Center - bins[0].Center
		mass := 0.0
		for _, b := range bins {
			mass += b.Density * width
		}
		assert.InDelta(t, 1.0, mass, 1e-9)
	})
}

func TestKDE(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, KDE(nil, 50))
	})

	t.Run("grid length and positivity", func(t *testing.T) {
		values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
		pts := KDE(values, 64)
		require.Len(t, pts, 64)
		for _, p := range pts {
			assert.GreaterOrEqual(t, p.Density, 0.0)
		}
		// Grid spans beyond the data on both sides.
		assert.Less(t, pts[0].X, 1.0)
		assert.Greater(t, pts[len(pts)-1].X, 8.0)
	})

	t.Run("peak near the mass", func(t *testing.T) {
		values := []float64{5, 5, 5, 5, 5.1, 4.9, 20}
		pts := KDE(values, 200)
		best := pts[0]
		for _, p := range pts {
			if p.Density > best.Density {
				best = p
			}
		}
		assert.InDelta(t, 5.0, best.X, 1.0)
	})

	t.Run("zero variance uses fallback bandwidth", func(t *testing.T) {
		pts := KDE([]float64{2, 2, 2}, 10)
		require.Len(t, pts, 10)
		for _, p := range pts {
			assert.False(t, p.Density < 0)
		}
	})
}
