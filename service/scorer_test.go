package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-score/domain"
)

func TestDecide(t *testing.T) {
	assert.Equal(t, domain.StatusApproved, Decide(700))
	assert.Equal(t, domain.StatusApproved, Decide(850.2))
	assert.Equal(t, domain.StatusRejected, Decide(699.999))
	assert.Equal(t, domain.StatusRejected, Decide(0))
}

func TestScorer_Score(t *testing.T) {
	s := NewScorer(linearModel{intercept: 600, w: domain.FeatureVector{100}})

	res, err := s.Score(domain.FeatureVector{1})
	require.NoError(t, err)
	assert.Equal(t, domain.ScoreResult{Score: 700, Status: domain.StatusApproved}, res)

	res, err = s.Score(domain.FeatureVector{0.5})
	require.NoError(t, err)
	assert.Equal(t, domain.ScoreResult{Score: 650, Status: domain.StatusRejected}, res)
}

func TestScorer_NonFinite(t *testing.T) {
	s := NewScorer(funcModel(func(domain.FeatureVector) float64 { return math.NaN() }))
	_, err := s.Score(domain.FeatureVector{})
	assert.ErrorContains(t, err, "non-finite")
}

func TestScorer_RoundsBeforeDeciding(t *testing.T) {
	s := NewScorer(funcModel(func(domain.FeatureVector) float64 { return 699.996 }))
	res, err := s.Score(domain.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, domain.ScoreResult{Score: 700, Status: domain.StatusApproved}, res)

	s = NewScorer(funcModel(func(domain.FeatureVector) float64 { return 699.994 }))
	res, err = s.Score(domain.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, domain.ScoreResult{Score: 699.99, Status: domain.StatusRejected}, res)
}
