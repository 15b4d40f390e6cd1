package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// AuthService checks credentials against stored accounts and mints bearer
// tokens. It only establishes identity; verification state is not consulted.
type AuthService struct {
	accounts  ports.AccountRepository
	hasher    ports.PasswordHasher
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(accounts ports.AccountRepository, hasher ports.PasswordHasher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{accounts: accounts, hasher: hasher, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Authenticate returns domain.ErrUnauthorized when the email is unknown or the
// password does not match.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return domain.ErrUnauthorized
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("authenticate: %w", err)
	}

	if s.hasher.Compare(account.PasswordHash, password) != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *AuthService) IssueToken(_ context.Context, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates a bearer token and returns the email it was issued for.
func (s *AuthService) ParseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
