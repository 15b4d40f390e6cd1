package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cloudnative/account-service/internal/core/domain"
)

func TestAuthHandler_Token_Success(t *testing.T) {
	e := newEcho()
	expires := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, email, password string) error {
			if email != "jane@example.com" || password != "s3cret" {
				t.Fatalf("unexpected credentials %s %s", email, password)
			}
			return nil
		},
		issueFn: func(_ context.Context, email string) (string, time.Time, error) {
			return "signed-token", expires, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/user/token", strings.NewReader(`{"email":"jane@example.com","password":"s3cret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.Token(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed-token" || !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthHandler_Token_InvalidCredentials(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		authenticateFn: func(context.Context, string, string) error {
			return domain.ErrUnauthorized
		},
		issueFn: func(context.Context, string) (string, time.Time, error) {
			t.Fatalf("token must not be issued")
			return "", time.Time{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/user/token", strings.NewReader(`{"email":"jane@example.com","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	if err := handler.Token(e.NewContext(req, httptest.NewRecorder())); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthHandler_Token_MissingFields(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/v1/user/token", strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	if got := statusOf(t, handler.Token(e.NewContext(req, httptest.NewRecorder()))); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}
