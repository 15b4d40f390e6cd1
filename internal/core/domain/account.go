package domain

import "time"

// Account is the persistent user record. Email is the external identity and
// never changes after creation.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Verified       bool      `json:"verified"`
	ProfileAssetID string    `json:"-"`
	CreatedAt      time.Time `json:"account_created"`
	UpdatedAt      time.Time `json:"account_updated"`
}

// HasProfileAsset reports whether the account links to a profile asset.
func (a *Account) HasProfileAsset() bool {
	return a.ProfileAssetID != ""
}

// Touch stamps UpdatedAt, keeping it at or after CreatedAt.
func (a *Account) Touch(now time.Time) {
	if now.Before(a.CreatedAt) {
		now = a.CreatedAt
	}
	a.UpdatedAt = now
}
