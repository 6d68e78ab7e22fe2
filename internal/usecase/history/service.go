package history

import (
	"context"
	"strings"

	domsplit "example.com/divide-account/internal/domain/split"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domsplit.Split, error)
	List(ctx context.Context, limit int) ([]*domsplit.Summary, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*domsplit.Split, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domsplit.ErrSplitNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the most recent splits, newest first. limit is clamped to
// [1, MaxLimit]; zero or negative means DefaultLimit.
func (s *Service) List(ctx context.Context, limit int) ([]*domsplit.Summary, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.List(ctx, limit)
}
