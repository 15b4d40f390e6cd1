package ports

import (
	"context"
	"time"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// AccountRepository persists accounts keyed by email.
type AccountRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Create returns domain.ErrAccountExists when the email is already taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// Each write below touches only its own fields plus account_updated, and
	// returns domain.ErrAccountNotFound when no account matches.

	// UpdateProfile writes the names and the password hash.
	UpdateProfile(ctx context.Context, account *domain.Account) error
	// MarkVerified sets verified to true.
	MarkVerified(ctx context.Context, email string, at time.Time) error
	// SetProfileAsset links assetID to the account; an empty id unlinks.
	SetProfileAsset(ctx context.Context, email, assetID string, at time.Time) error
}
