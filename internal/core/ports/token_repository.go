package ports

import (
	"context"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// TokenRepository persists verification tokens keyed by the token string.
type TokenRepository interface {
	Insert(ctx context.Context, token *domain.VerificationToken) error
	// FindByToken returns domain.ErrTokenNotFound when no token matches.
	FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	// MarkVerified moves a PENDING token to VERIFIED. It returns
	// domain.ErrTokenUsed when the token is no longer pending.
	MarkVerified(ctx context.Context, token string) error
}

// TokenLedger issues and retires verification tokens.
type TokenLedger interface {
	Issue(ctx context.Context, email string) (*domain.VerificationToken, error)
	FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	MarkVerified(ctx context.Context, token string) error
}
