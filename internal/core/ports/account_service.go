package ports

import (
	"context"
	"io"

	"github.com/cloudnative/account-service/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateSelfInput carries a partial update. Nil fields are left untouched.
// Email is only used to reject attempts to change it.
type UpdateSelfInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UploadInput carries a profile picture upload.
type UploadInput struct {
	Body        io.Reader
	Size        int64
	ContentType string
	FileName    string
}

// Identity is the authenticated email of the caller, as established by the
// authentication layer.
type Identity struct {
	Email string
}

// AccountService is the account lifecycle use-case boundary.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	GetSelf(ctx context.Context, id Identity) (*domain.Account, error)
	UpdateSelf(ctx context.Context, id Identity, in UpdateSelfInput) (*domain.Account, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, id Identity) error

	UploadPicture(ctx context.Context, id Identity, in UploadInput) (*domain.ProfileAsset, error)
	GetPicture(ctx context.Context, id Identity) (*domain.ProfileAsset, error)
	DeletePicture(ctx context.Context, id Identity) error
}

// ProfileAssetManager keeps an account, its metadata row and the stored
// object in agreement.
type ProfileAssetManager interface {
	Upload(ctx context.Context, account *domain.Account, in UploadInput) (*domain.ProfileAsset, error)
	Get(ctx context.Context, account *domain.Account) (*domain.ProfileAsset, error)
	Delete(ctx context.Context, account *domain.Account) error
}
