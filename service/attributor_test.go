package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-score/domain"
)

func contributions(entries []domain.AttributionEntry) map[string]float64 {
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		out[e.Feature] = e.Contribution
	}
	return out
}

func TestAttributor_Linear(t *testing.T) {
	m := linearModel{intercept: 650, w: domain.FeatureVector{-100, 50, -20, 0.001, -300, -30, -25}}
	baseline := domain.FeatureVector{0.4, 0.3, 0.2, 20000, 0.02, 0, 0}
	x := domain.FeatureVector{0.8, 0.2, 0.4, 0, 0, 1, 0}

	entries, err := NewAttributor(m, baseline).Attribute(x)
	require.NoError(t, err)
	require.Len(t, entries, domain.NumFeatures)

	got := contributions(entries)
	for i, name := range domain.FeatureNames {
		assert.InDelta(t, m.w[i]*(x[i]-baseline[i]), got[name], 1e-9, name)
	}
}

func TestAttributor_Additive(t *testing.T) {
	// interaction between DTI and IS_HIGH_DEBT is split evenly
	m := funcModel(func(x domain.FeatureVector) float64 {
		return 700 - 200*x[domain.FeatureDTI]*x[domain.FeatureIsHighDebt] + 10*x[domain.FeatureSTI]
	})
	baseline := domain.FeatureVector{}
	x := domain.FeatureVector{0.8, 0.5, 0.4, 100, 0.1, 1, 1}

	entries, err := NewAttributor(m, baseline).Attribute(x)
	require.NoError(t, err)

	sum := 0.0
	for _, e := range entries {
		sum += e.Contribution
	}
	assert.InDelta(t, m.Predict(x)-m.Predict(baseline), sum, 1e-9)

	got := contributions(entries)
	assert.InDelta(t, -80.0, got["DTI"], 1e-9)
	assert.InDelta(t, -80.0, got["IS_HIGH_DEBT"], 1e-9)
	assert.InDelta(t, 5.0, got["STI"], 1e-9)
	assert.InDelta(t, 0.0, got["CUR"], 1e-9)
}

func TestAttributor_RankingAndTies(t *testing.T) {
	m := linearModel{w: domain.FeatureVector{1, -5, 5, 0, 2, -2, 0}}
	entries, err := NewAttributor(m, domain.FeatureVector{}).Attribute(domain.FeatureVector{1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)

	var order []string
	for _, e := range entries {
		order = append(order, e.Feature)
	}
	assert.Equal(t, []string{
		"STI", "CUR", "GAMBLING_PERCENTAGE", "IS_HIGH_DEBT", "DTI", "TOTAL_SPENDING", "IS_LOW_SAVINGS",
	}, order)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, math.Abs(entries[i-1].Contribution), math.Abs(entries[i].Contribution))
	}
}

func TestAttributor_Deterministic(t *testing.T) {
	m := funcModel(func(x domain.FeatureVector) float64 {
		if x[0] > 0.5 {
			return 600 + x[1]*100
		}
		return 780 - x[4]*50
	})
	a := NewAttributor(m, domain.FeatureVector{0.3, 0.4, 0.2, 5000, 0.05, 0, 0})
	x := domain.FeatureVector{0.9, 0.1, 0.5, 100, 0.3, 1, 1}

	first, err := a.Attribute(x)
	require.NoError(t, err)
	second, err := a.Attribute(x)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAttributor_NonFinite(t *testing.T) {
	m := funcModel(func(x domain.FeatureVector) float64 { return 1 / x[0] })
	_, err := NewAttributor(m, domain.FeatureVector{}).Attribute(domain.FeatureVector{1})
	assert.Error(t, err)
}

func TestFormatExplanation(t *testing.T) {
	entries := []domain.AttributionEntry{
		{Feature: "DTI", Contribution: -42.457},
		{Feature: "IS_HIGH_DEBT", Contribution: -20},
		{Feature: "STI", Contribution: 3.004},
		{Feature: "CUR", Contribution: 1},
	}

	assert.Equal(t,
		"Loan Decision Based On:\n"+
			"- DTI impacted the score by -42.46\n"+
			"- IS_HIGH_DEBT impacted the score by -20.00\n"+
			"- STI impacted the score by 3.00\n",
		FormatExplanation(entries))

	assert.Equal(t, []string{
		"DTI affected the score by -42.46",
		"IS_HIGH_DEBT affected the score by -20.00",
		"STI affected the score by 3.00",
	}, TopReasons(entries))

	assert.Equal(t, "Loan Decision Based On:\n- DTI impacted the score by 1.50\n",
		FormatExplanation([]domain.AttributionEntry{{Feature: "DTI", Contribution: 1.5}}))
}
