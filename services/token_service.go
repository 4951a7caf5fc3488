package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues HS256 bearer tokens for local accounts
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService creates a token issuer
func NewTokenService(secret, issuer, audience string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("jwt issuer and audience must be provided")
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue signs a token whose subject is the user id
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// KeyFunc hands the signing secret to the token validator
func (s *TokenService) KeyFunc(ctx context.Context) (interface{}, error) {
	return s.secret, nil
}

func (s *TokenService) Issuer() string     { return s.issuer }
func (s *TokenService) Audience() string   { return s.audience }
func (s *TokenService) TTL() time.Duration { return s.ttl }
