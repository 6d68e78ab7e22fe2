package memory

import (
	"context"
	"strings"

	domoperator "example.com/divide-account/internal/domain/operator"
)

// OperatorRepository serves the single operator account defined in config.
type OperatorRepository struct {
	operator *domoperator.Operator
}

func NewOperatorRepository(op *domoperator.Operator) *OperatorRepository {
	if op != nil {
		cloned := *op
		cloned.Email = strings.TrimSpace(strings.ToLower(cloned.Email))
		op = &cloned
	}
	return &OperatorRepository{operator: op}
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*domoperator.Operator, error) {
	if r.operator == nil || r.operator.Email == "" || r.operator.Email != email {
		return nil, domoperator.ErrOperatorNotFound
	}
	cloned := *r.operator
	return &cloned, nil
}
