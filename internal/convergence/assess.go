package convergence

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds for the three-check convergence rule.
type Thresholds struct {
	Geweke   float64 `json:"geweke"`    // |z| above this is a violation
	RHat     float64 `json:"r_hat"`     // R-hat above this is a violation
	ESSRatio float64 `json:"ess_ratio"` // ESS/n below this is a violation
}

// DefaultThresholds returns the standard gate: Geweke 2.0, R-hat 1.1,
// ESS ratio 0.1.
func DefaultThresholds() Thresholds {
	return Thresholds{Geweke: 2.0, RHat: 1.1, ESSRatio: 0.1}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.Geweke <= 0 {
		t.Geweke = d.Geweke
	}
	if t.RHat <= 0 {
		t.RHat = d.RHat
	}
	if t.ESSRatio <= 0 {
		t.ESSRatio = d.ESSRatio
	}
	return t
}

// minSamplesForAssessment gates the verdict: anything shorter is
// not-converged with confidence 0.
const minSamplesForAssessment = 100

// Assessment is the three-check convergence verdict. Confidence is 0.95
// when all checks pass, otherwise 1 - violated/3.
type Assessment struct {
	Converged  bool    `json:"converged"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	Geweke     float64 `json:"geweke"` // worst-variable |z|, signed
	RHat       float64 `json:"r_hat"`  // worst-variable split R-hat
	ESS        int     `json:"ess"`    // worst-variable ESS
}

// AssessConvergence applies the three-threshold, linear-penalty rule to
// sample columns. Each metric is reduced across variables to its worst
// case before comparison.
func AssessConvergence(columns [][]float64, th Thresholds) Assessment {
	th = th.withDefaults()

	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}
	if n < minSamplesForAssessment {
		return Assessment{
			Converged:  false,
			Confidence: 0,
			Reason:     fmt.Sprintf("insufficient samples: %d < %d", n, minSamplesForAssessment),
			RHat:       1,
			ESS:        MinEffectiveSampleSize(columns),
		}
	}

	geweke := worstGeweke(columns)
	rhat := worstRHat(columns)
	ess := MinEffectiveSampleSize(columns)

	var reasons []string
	if math.Abs(geweke) > th.Geweke {
		reasons = append(reasons, fmt.Sprintf("Geweke statistic %.3f exceeds %.1f", geweke, th.Geweke))
	}
	if rhat > th.RHat {
		reasons = append(reasons, fmt.Sprintf("R-hat %.3f exceeds %.2f", rhat, th.RHat))
	}
	essRatio := float64(ess) / float64(n)
	if essRatio < th.ESSRatio {
		reasons = append(reasons, fmt.Sprintf("effective sample ratio %.3f below %.2f", essRatio, th.ESSRatio))
	}

	a := Assessment{Geweke: geweke, RHat: rhat, ESS: ess}
	if len(reasons) == 0 {
		a.Converged = true
		a.Confidence = 0.95
		return a
	}
	a.Converged = false
	a.Confidence = 1 - float64(len(reasons))/3
	a.Reason = strings.Join(reasons, "; ")
	return a
}

func worstGeweke(columns [][]float64) float64 {
	worst := 0.0
	for _, col := range columns {
		if z := GewekeStatistic(col, 0, 0); math.Abs(z) > math.Abs(worst) {
			worst = z
		}
	}
	return worst
}

func worstRHat(columns [][]float64) float64 {
	worst := 1.0
	for _, col := range columns {
		if r := RHatSingleChain(col); r > worst {
			worst = r
		}
	}
	return worst
}

// TraceStats holds running prefix statistics of a chain.
type TraceStats struct {
	RunningMean     []float64 `json:"running_mean"`
	RunningVariance []float64 `json:"running_variance"` // population, per prefix
	Stabilized      bool      `json:"stabilized"`
	StabilizedAt    int       `json:"stabilized_at"` // first stabilized index, -1 if none
}

// TraceStatistics computes running mean/variance per prefix length and
// flags the trace stabilized if, within the last 20%, some point's
// running mean is within 1% relative of the final running mean. The
// first such index is recorded.
func TraceStatistics(values []float64) TraceStats {
	n := len(values)
	ts := TraceStats{
		RunningMean:     make([]float64, n),
		RunningVariance: make([]float64, n),
		StabilizedAt:    -1,
	}
	if n == 0 {
		return ts
	}

	// Welford over prefixes
	mean, m2 := 0.0, 0.0
	for i, v := range values {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
		ts.RunningMean[i] = mean
		ts.RunningVariance[i] = m2 / float64(i+1)
	}

	// The final point trivially matches itself, so the scan stops one
	// short of it.
	final := ts.RunningMean[n-1]
	for i := n * 4 / 5; i < n-1; i++ {
		diff := math.Abs(ts.RunningMean[i] - final)
		if final != 0 {
			diff /= math.Abs(final)
		}
		if diff < 0.01 {
			ts.Stabilized = true
			ts.StabilizedAt = i
			break
		}
	}
	return ts
}

// DiagnosticSummary is advisory text keyed to the same thresholds the
// verdict uses; it never changes the pass/fail outcome.
type DiagnosticSummary struct {
	Assessment      Assessment `json:"assessment"`
	Issues          []string   `json:"issues,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
}

// GenerateDiagnosticSummary aggregates the diagnostics into issues and
// recommendations for the caller to render.
func GenerateDiagnosticSummary(columns [][]float64, names []string, th Thresholds) DiagnosticSummary {
	th = th.withDefaults()
	summary := DiagnosticSummary{Assessment: AssessConvergence(columns, th)}

	for i, col := range columns {
		name := fmt.Sprintf("variable %d", i)
		if i < len(names) {
			name = names[i]
		}
		if z := GewekeStatistic(col, 0, 0); math.Abs(z) > th.Geweke {
			summary.Issues = append(summary.Issues,
				fmt.Sprintf("%s: early and late chain segments disagree (Geweke %.3f)", name, z))
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("%s: increase burn-in to discard the drifting prefix", name))
		}
		if r := RHatSingleChain(col); r > th.RHat {
			summary.Issues = append(summary.Issues,
				fmt.Sprintf("%s: chain halves have not mixed (R-hat %.3f)", name, r))
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("%s: run more iterations or additional chains", name))
		}
		if n := len(col); n > 0 {
			ess := EffectiveSampleSize(col)
			if float64(ess)/float64(n) < th.ESSRatio {
				summary.Issues = append(summary.Issues,
					fmt.Sprintf("%s: high autocorrelation (ESS %d of %d)", name, ess, n))
				summary.Recommendations = append(summary.Recommendations,
					fmt.Sprintf("%s: increase thinning to decorrelate kept samples", name))
			}
		}
	}
	return summary
}
