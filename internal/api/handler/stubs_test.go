package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/api/middleware"
	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

type stubAccountService struct {
	registerFn   func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	getSelfFn    func(ctx context.Context, id ports.Identity) (*domain.Account, error)
	updateSelfFn func(ctx context.Context, id ports.Identity, in ports.UpdateSelfInput) (*domain.Account, error)
	verifyFn     func(ctx context.Context, token string) (string, error)
	resendFn     func(ctx context.Context, id ports.Identity) error
	uploadFn     func(ctx context.Context, id ports.Identity, in ports.UploadInput) (*domain.ProfileAsset, error)
	getPicFn     func(ctx context.Context, id ports.Identity) (*domain.ProfileAsset, error)
	deletePicFn  func(ctx context.Context, id ports.Identity) error
}

func (s *stubAccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) GetSelf(ctx context.Context, id ports.Identity) (*domain.Account, error) {
	return s.getSelfFn(ctx, id)
}

func (s *stubAccountService) UpdateSelf(ctx context.Context, id ports.Identity, in ports.UpdateSelfInput) (*domain.Account, error) {
	return s.updateSelfFn(ctx, id, in)
}

func (s *stubAccountService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return s.verifyFn(ctx, token)
}

func (s *stubAccountService) ResendVerification(ctx context.Context, id ports.Identity) error {
	return s.resendFn(ctx, id)
}

func (s *stubAccountService) UploadPicture(ctx context.Context, id ports.Identity, in ports.UploadInput) (*domain.ProfileAsset, error) {
	return s.uploadFn(ctx, id, in)
}

func (s *stubAccountService) GetPicture(ctx context.Context, id ports.Identity) (*domain.ProfileAsset, error) {
	return s.getPicFn(ctx, id)
}

func (s *stubAccountService) DeletePicture(ctx context.Context, id ports.Identity) error {
	return s.deletePicFn(ctx, id)
}

type stubAuthService struct {
	authenticateFn func(ctx context.Context, email, password string) error
	issueFn        func(ctx context.Context, email string) (string, time.Time, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) error {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubAuthService) IssueToken(ctx context.Context, email string) (string, time.Time, error) {
	return s.issueFn(ctx, email)
}

func (s *stubAuthService) ParseToken(string) (string, error) {
	return "", domain.ErrUnauthorized
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// authenticated marks c as coming from email, as the Auth middleware would.
func authenticated(c echo.Context, email string) echo.Context {
	c.Set(middleware.IdentityKey, email)
	return c
}

// statusOf returns the HTTP status an error returned by a handler maps to,
// for the error types handlers produce directly.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	return http.StatusInternalServerError
}
