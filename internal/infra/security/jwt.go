package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domoperator "example.com/divide-account/internal/domain/operator"
	authuc "example.com/divide-account/internal/usecase/auth"
)

var errInvalidToken = errors.New("invalid token")

type JWTService struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTService(secret string, expiration time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

type jwtClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (s *JWTService) IssueToken(op *domoperator.Operator) (authuc.Token, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)
	claims := jwtClaims{
		Name: op.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return authuc.Token{}, err
	}
	return authuc.Token{Value: signed, ExpiresAt: expiresAt.UTC()}, nil
}

func (s *JWTService) ParseToken(token string) (*authuc.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errInvalidToken
	}

	return &authuc.Claims{
		Email: claims.Subject,
		Name:  claims.Name,
	}, nil
}
