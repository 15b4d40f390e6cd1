package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudnative/account-service/internal/core/domain"
)

func seededAuth(t *testing.T) (*AuthService, *stubAccountRepo) {
	t.Helper()
	repo := newStubAccountRepo()
	if _, err := repo.Create(context.Background(), &domain.Account{Email: "carol@example.com", PasswordHash: "hashed:s3cret"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewAuthService(repo, stubHasher{}, "secret", time.Hour), repo
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	svc, _ := seededAuth(t)

	if err := svc.Authenticate(context.Background(), "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	svc, _ := seededAuth(t)

	cases := []struct{ email, password string }{
		{"carol@example.com", "wrong"},
		{"ghost@example.com", "s3cret"},
		{"", "s3cret"},
		{"carol@example.com", ""},
	}
	for _, tc := range cases {
		if err := svc.Authenticate(context.Background(), tc.email, tc.password); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%+v: expected ErrUnauthorized, got %v", tc, err)
		}
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	svc, repo := seededAuth(t)
	repo.findErr = domain.ErrUnavailable

	err := svc.Authenticate(context.Background(), "carol@example.com", "s3cret")
	if domain.KindOf(err) != domain.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, _ := seededAuth(t)

	token, expires, err := svc.IssueToken(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" || time.Until(expires) <= 0 {
		t.Fatalf("unexpected token %q expiring %v", token, expires)
	}

	email, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if email != "carol@example.com" {
		t.Fatalf("unexpected subject %q", email)
	}
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc, _ := seededAuth(t)

	other := NewAuthService(newStubAccountRepo(), stubHasher{}, "other-secret", time.Hour)
	foreign, _, _ := other.IssueToken(context.Background(), "carol@example.com")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "carol@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("secret"))

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"foreign":    foreign,
		"expired":    expired,
		"no subject": noSubject,
	} {
		if _, err := svc.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}
