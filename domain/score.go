package domain

import "time"

type LoanStatus string

const (
	StatusApproved LoanStatus = "APPROVED"
	StatusRejected LoanStatus = "REJECTED"
)

// ScoreResult is the model output plus the thresholded decision.
type ScoreResult struct {
	Score  float64    `json:"score"`
	Status LoanStatus `json:"status"`
}

// AttributionEntry is one feature's signed contribution to the score.
type AttributionEntry struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// ScoreResponse is returned to the caller of the predict endpoint.
type ScoreResponse struct {
	CreditScore           float64            `json:"credit_score" yaml:"credit_score"`
	LoanStatus            LoanStatus         `json:"loan_status" yaml:"loan_status"`
	Explanation           string             `json:"explanation" yaml:"explanation"`
	DetailedAIExplanation string             `json:"detailed_ai_explanation" yaml:"detailed_ai_explanation"`
	FinancialMetrics      map[string]float64 `json:"financial_metrics" yaml:"financial_metrics"`
}

// ScoreRecord is what the service keeps about a scored request. Derived
// features are not part of it; they are recomputed from Applicant on read.
type ScoreRecord struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	Applicant    ApplicantRecord    `json:"applicant"`
	Score        float64            `json:"score"`
	Status       LoanStatus         `json:"status"`
	Attributions []AttributionEntry `json:"attributions"`
}

// StoredScore is a ScoreRecord as returned to callers, with the financial
// metrics derived again from the stored applicant.
type StoredScore struct {
	ScoreRecord
	FinancialMetrics map[string]float64 `json:"financial_metrics"`
}
