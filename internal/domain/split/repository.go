package split

import "context"

type Repository interface {
	Create(ctx context.Context, s *Split) (*Split, error)
	GetByID(ctx context.Context, id string) (*Split, error)
	List(ctx context.Context, limit int) ([]*Summary, error)
	Ping(ctx context.Context) error
	Close() error
}
