package service

import (
	"fmt"
	"math"

	"credit-score/domain"
	"credit-score/model"
)

// Scorer turns a feature vector into a credit score and a decision.
type Scorer struct {
	model model.Regressor
}

func NewScorer(m model.Regressor) *Scorer {
	return &Scorer{model: m}
}

// Score runs one model inference. A non-finite prediction means the model is
// broken and is reported as an error. The score is rounded to 2 decimals
// before the decision so the reported score and status always agree.
func (s *Scorer) Score(x domain.FeatureVector) (domain.ScoreResult, error) {
	raw := s.model.Predict(x)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return domain.ScoreResult{}, fmt.Errorf("model produced non-finite score %v", raw)
	}
	score := domain.RoundTo2Decimals(raw)
	return domain.ScoreResult{Score: score, Status: Decide(score)}, nil
}

// Decide applies the fixed approval threshold.
func Decide(score float64) domain.LoanStatus {
	if score >= ApprovalThreshold {
		return domain.StatusApproved
	}
	return domain.StatusRejected
}
