package repository

import (
	"context"
	"errors"

	"credit-score/domain"
)

var ErrNotFound = errors.New("score record not found")

// ScoreRepository keeps the outcome of every scored request.
type ScoreRepository interface {
	Save(ctx context.Context, rec domain.ScoreRecord) error
	Get(ctx context.Context, id string) (domain.ScoreRecord, error)
}
