package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"credit-score/domain"
	"credit-score/repository"
)

// Assessment is the outcome of one scoring request.
type Assessment struct {
	Record   domain.ScoreRecord
	Response domain.ScoreResponse
}

// CreditService runs the scoring pipeline: derive features, score, decide,
// attribute, narrate and assemble the response. Only the narration may
// degrade; every other step either succeeds or fails the whole request.
type CreditService struct {
	scorer     *Scorer
	attributor *Attributor
	narrator   Narrator
	repo       repository.ScoreRepository
	now        func() time.Time
	newID      func() string
}

// NewCreditService wires the pipeline. repo may be nil to skip persistence.
func NewCreditService(
	scorer *Scorer,
	attributor *Attributor,
	narrator Narrator,
	repo repository.ScoreRepository,
) *CreditService {
	return &CreditService{
		scorer:     scorer,
		attributor: attributor,
		narrator:   narrator,
		repo:       repo,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Score assesses one applicant.
func (s *CreditService) Score(ctx context.Context, rec domain.ApplicantRecord) (Assessment, error) {
	if err := rec.Validate(); err != nil {
		return Assessment{}, err
	}

	features := DeriveFeatures(rec)
	x := features.Vector()

	result, err := s.scorer.Score(x)
	if err != nil {
		return Assessment{}, fmt.Errorf("scoring: %w", err)
	}

	attributions, err := s.attributor.Attribute(x)
	if err != nil {
		return Assessment{}, fmt.Errorf("attributing: %w", err)
	}

	record := domain.ScoreRecord{
		ID:           s.newID(),
		CreatedAt:    s.now().UTC(),
		Applicant:    rec,
		Score:        result.Score,
		Status:       result.Status,
		Attributions: attributions,
	}

	// The decision is final here; narration only adds prose.
	narration := s.narrator.Explain(ctx, result.Status, TopReasons(attributions))

	response := domain.ScoreResponse{
		CreditScore:           result.Score,
		LoanStatus:            result.Status,
		Explanation:           FormatExplanation(attributions),
		DetailedAIExplanation: narration,
		FinancialMetrics:      features.Metrics(),
	}

	// Saving is not critical.
	if s.repo != nil {
		if err := s.repo.Save(ctx, record); err != nil {
			slog.Warn("failed to save score record", "id", record.ID, "error", err)
		}
	}

	return Assessment{Record: record, Response: response}, nil
}

// Record returns a previously stored assessment with its metrics derived
// again from the stored applicant.
func (s *CreditService) Record(ctx context.Context, id string) (domain.StoredScore, error) {
	if s.repo == nil {
		return domain.StoredScore{}, repository.ErrNotFound
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.StoredScore{}, err
	}
	return domain.StoredScore{
		ScoreRecord:      rec,
		FinancialMetrics: DeriveFeatures(rec.Applicant).Metrics(),
	}, nil
}
