package ports

import (
	"context"
	"io"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// AssetRepository persists profile asset metadata. At most one row exists per
// account email.
type AssetRepository interface {
	Insert(ctx context.Context, asset *domain.ProfileAsset) error
	// FindByID returns domain.ErrAssetNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.ProfileAsset, error)
	// FindByAccountEmail returns the row owned by email, linked or not, or
	// domain.ErrAssetNotFound.
	FindByAccountEmail(ctx context.Context, email string) (*domain.ProfileAsset, error)
	// Delete removes the row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// AssetStore abstracts the object store holding asset bytes.
type AssetStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL returns the externally resolvable address of key.
	URL(ctx context.Context, key string) (string, error)
}
