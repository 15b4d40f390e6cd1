package domain

import "time"

// TokenStatus is the persisted state of a verification token. Expiry is
// observed from ExpiresAt and never stored.
type TokenStatus string

const (
	TokenPending  TokenStatus = "PENDING"
	TokenVerified TokenStatus = "VERIFIED"
)

// VerificationToken proves control of the email it was issued for.
type VerificationToken struct {
	Token     string      `json:"-"`
	Email     string      `json:"email"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Status    TokenStatus `json:"status"`
}

// ExpiredAt reports whether the token is no longer consumable at now.
func (t *VerificationToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Consumable reports whether the token can verify its email at now.
func (t *VerificationToken) Consumable(now time.Time) bool {
	return t.Status == TokenPending && !t.ExpiredAt(now)
}
