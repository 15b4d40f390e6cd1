package ports

import (
	"context"
	"time"
)

// AuthService checks credentials and mints bearer tokens for the HTTP layer.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) error
	IssueToken(ctx context.Context, email string) (token string, expiresAt time.Time, err error)
	ParseToken(token string) (email string, err error)
}
