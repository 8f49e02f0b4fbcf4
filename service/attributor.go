package service

import (
	"fmt"
	"math"
	"math/bits"
	"sort"
	"strings"

	"credit-score/domain"
	"credit-score/model"
)

const coalitions = 1 << domain.NumFeatures

// Attributor computes exact Shapley values of the model output against a
// fixed baseline vector. Features outside a coalition take their baseline
// value, so the contributions always sum to f(x) - f(baseline).
type Attributor struct {
	model    model.Regressor
	baseline domain.FeatureVector
	weights  [domain.NumFeatures]float64
}

func NewAttributor(m model.Regressor, baseline domain.FeatureVector) *Attributor {
	a := &Attributor{model: m, baseline: baseline}
	// weights[k] = k! (n-k-1)! / n!
	n := domain.NumFeatures
	for k := 0; k < n; k++ {
		a.weights[k] = factorial(k) * factorial(n-k-1) / factorial(n)
	}
	return a
}

// Attribute returns one entry per feature, ranked by absolute contribution.
// Ties keep the model's feature order.
func (a *Attributor) Attribute(x domain.FeatureVector) ([]domain.AttributionEntry, error) {
	var values [coalitions]float64
	for mask := 0; mask < coalitions; mask++ {
		v := a.baseline
		for i := 0; i < domain.NumFeatures; i++ {
			if mask&(1<<i) != 0 {
				v[i] = x[i]
			}
		}
		values[mask] = a.model.Predict(v)
		if math.IsNaN(values[mask]) || math.IsInf(values[mask], 0) {
			return nil, fmt.Errorf("model produced non-finite value during attribution")
		}
	}

	entries := make([]domain.AttributionEntry, domain.NumFeatures)
	for i := 0; i < domain.NumFeatures; i++ {
		bit := 1 << i
		// marginal gains grouped by coalition size
		var bySize [domain.NumFeatures]float64
		for mask := 0; mask < coalitions; mask++ {
			if mask&bit != 0 {
				continue
			}
			bySize[bits.OnesCount(uint(mask))] += values[mask|bit] - values[mask]
		}
		phi := 0.0
		for k, gain := range bySize {
			phi += a.weights[k] * gain
		}
		entries[i] = domain.AttributionEntry{Feature: domain.FeatureNames[i], Contribution: phi}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return math.Abs(entries[i].Contribution) > math.Abs(entries[j].Contribution)
	})
	return entries, nil
}

// TopReasons renders the first TopReasonCount entries as short sentences for
// the narrator.
func TopReasons(entries []domain.AttributionEntry) []string {
	top := entries[:min(TopReasonCount, len(entries))]
	reasons := make([]string, 0, len(top))
	for _, e := range top {
		reasons = append(reasons, fmt.Sprintf("%s affected the score by %.2f", e.Feature, e.Contribution))
	}
	return reasons
}

// FormatExplanation renders the structured explanation returned to callers.
func FormatExplanation(entries []domain.AttributionEntry) string {
	var b strings.Builder
	b.WriteString(ExplanationHeader)
	for _, e := range entries[:min(TopReasonCount, len(entries))] {
		fmt.Fprintf(&b, "- %s impacted the score by %.2f\n", e.Feature, e.Contribution)
	}
	return b.String()
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
