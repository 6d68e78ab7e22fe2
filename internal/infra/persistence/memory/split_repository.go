// Package memory keeps split history and the operator account in process
// memory. It is the default store and the one used by handler tests. Split
// history is bounded and lost on restart; use a SQL driver to keep it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domsplit "example.com/divide-account/internal/domain/split"
)

const DefaultCapacity = 1000

// SplitRepository holds at most capacity splits; the oldest is evicted
// when a new one would exceed it.
type SplitRepository struct {
	mu       sync.RWMutex
	capacity int
	splits   map[string]*domsplit.Split
	order    []string
	now      func() time.Time
}

// NewSplitRepository returns a store bounded to capacity splits. Zero or
// negative means DefaultCapacity.
func NewSplitRepository(capacity int) *SplitRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SplitRepository{
		capacity: capacity,
		splits:   make(map[string]*domsplit.Split),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *SplitRepository) Create(ctx context.Context, s *domsplit.Split) (*domsplit.Split, error) {
	if s == nil || len(s.Allocation.Shares) == 0 {
		return nil, domsplit.ErrInvalidSplit
	}

	rec := cloneSplit(s)
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.splits[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}
	r.splits[rec.ID] = rec
	for len(r.order) > r.capacity {
		delete(r.splits, r.order[0])
		r.order = append(r.order[:0], r.order[1:]...)
	}
	return cloneSplit(rec), nil
}

func (r *SplitRepository) GetByID(ctx context.Context, id string) (*domsplit.Split, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.splits[id]
	if !ok {
		return nil, domsplit.ErrSplitNotFound
	}
	return cloneSplit(s), nil
}

// List returns summaries in reverse insertion order.
func (r *SplitRepository) List(ctx context.Context, limit int) ([]*domsplit.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]*domsplit.Summary, 0, min(limit, len(r.order)))
	for i := len(r.order) - 1; i >= 0 && len(summaries) < limit; i-- {
		s := r.splits[r.order[i]]
		summaries = append(summaries, &domsplit.Summary{
			ID:             s.ID,
			Total:          s.Allocation.Total,
			RecipientCount: len(s.Allocation.Shares),
			CreatedAt:      s.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *SplitRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *SplitRepository) Close() error {
	return nil
}

func cloneSplit(s *domsplit.Split) *domsplit.Split {
	cloned := *s
	cloned.Allocation.Shares = append([]domsplit.Share(nil), s.Allocation.Shares...)
	return &cloned
}
