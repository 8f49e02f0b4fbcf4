package repository

import (
	"context"
	"slices"
	"sync"

	"credit-score/domain"
)

// DefaultMemoryRecordCapacity bounds ScoreRepositoryMemory when no capacity
// is given.
const DefaultMemoryRecordCapacity = 10_000

// ScoreRepositoryMemory is an in-memory implementation of ScoreRepository.
// It holds at most capacity records and evicts the oldest save first.
type ScoreRepositoryMemory struct {
	mu       sync.RWMutex
	capacity int
	data     map[string]domain.ScoreRecord
	order    []string
}

// NewScoreRepositoryMemory creates a new in-memory score repository. A
// capacity of zero or less uses DefaultMemoryRecordCapacity.
func NewScoreRepositoryMemory(capacity int) *ScoreRepositoryMemory {
	if capacity <= 0 {
		capacity = DefaultMemoryRecordCapacity
	}
	return &ScoreRepositoryMemory{
		capacity: capacity,
		data:     make(map[string]domain.ScoreRecord),
	}
}

// Save stores the record in memory.
func (r *ScoreRepositoryMemory) Save(_ context.Context, rec domain.ScoreRecord) error {
	rec.Attributions = slices.Clone(rec.Attributions)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}
	r.data[rec.ID] = rec

	for len(r.order) > r.capacity {
		delete(r.data, r.order[0])
		r.order[0] = ""
		r.order = r.order[1:]
	}
	return nil
}

func (r *ScoreRepositoryMemory) Get(_ context.Context, id string) (domain.ScoreRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok {
		return domain.ScoreRecord{}, ErrNotFound
	}
	rec.Attributions = slices.Clone(rec.Attributions)
	return rec, nil
}

// Len reports how many records are held.
func (r *ScoreRepositoryMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
