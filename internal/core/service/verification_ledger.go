package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// DefaultVerificationWindow is how long a freshly issued token stays valid.
const DefaultVerificationWindow = 120 * time.Second

const tokenBytes = 32

// VerificationLedger issues single-use email verification tokens.
type VerificationLedger struct {
	repo   ports.TokenRepository
	window time.Duration
	now    func() time.Time
}

func NewVerificationLedger(repo ports.TokenRepository, window time.Duration) *VerificationLedger {
	if window <= 0 {
		window = DefaultVerificationWindow
	}
	return &VerificationLedger{repo: repo, window: window, now: time.Now}
}

// Issue creates and persists a PENDING token for email. Earlier tokens for the
// same email stay valid until they expire.
func (l *VerificationLedger) Issue(ctx context.Context, email string) (*domain.VerificationToken, error) {
	value, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	issued := l.now().UTC()
	token := &domain.VerificationToken{
		Token:     value,
		Email:     email,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(l.window),
		Status:    domain.TokenPending,
	}
	if err := l.repo.Insert(ctx, token); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (l *VerificationLedger) FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	return l.repo.FindByToken(ctx, token)
}

func (l *VerificationLedger) MarkVerified(ctx context.Context, token string) error {
	return l.repo.MarkVerified(ctx, token)
}

// generateToken returns 32 random bytes, hex encoded.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
