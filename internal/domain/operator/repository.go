package operator

import "context"

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Operator, error)
}
