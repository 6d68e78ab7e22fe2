package operator

import "errors"

var (
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
)
