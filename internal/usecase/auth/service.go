// Package auth signs the operator in and issues the bearer token that guards
// split history.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domoperator "example.com/divide-account/internal/domain/operator"
)

type PasswordComparer interface {
	Compare(hash string, password string) error
}

// Claims is what a valid bearer token tells about its holder.
type Claims struct {
	Email string
	Name  string
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

type TokenService interface {
	IssueToken(op *domoperator.Operator) (Token, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	operators domoperator.Repository
	passwords PasswordComparer
	tokens    TokenService
}

func NewService(operators domoperator.Repository, passwords PasswordComparer, tokens TokenService) *Service {
	return &Service{operators: operators, passwords: passwords, tokens: tokens}
}

// Session is a signed-in operator together with their token.
type Session struct {
	Operator *domoperator.Operator
	Token    Token
}

// Login checks the operator's password. An unknown email and a wrong
// password both yield ErrUnauthorized; lookup failures are returned as is.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domoperator.ErrInvalidCredential
	}

	op, err := s.operators.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domoperator.ErrOperatorNotFound):
		return nil, domoperator.ErrUnauthorized
	case err != nil:
		return nil, fmt.Errorf("look up operator: %w", err)
	}

	if err := s.passwords.Compare(op.PasswordHash, password); err != nil {
		return nil, domoperator.ErrUnauthorized
	}

	token, err := s.tokens.IssueToken(op)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Operator: op, Token: token}, nil
}
