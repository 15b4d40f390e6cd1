package service

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/cloudnative/account-service/internal/core/domain"
)

func TestVerificationLedger_Issue(t *testing.T) {
	repo := newStubTokenRepo()
	c := newClock()
	ledger := NewVerificationLedger(repo, 5*time.Minute)
	ledger.now = c.Now

	tok, err := ledger.Issue(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(tok.Token) != 2*tokenBytes {
		t.Fatalf("unexpected token length %d", len(tok.Token))
	}
	if _, err := hex.DecodeString(tok.Token); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if !tok.IssuedAt.Equal(c.Now()) || !tok.ExpiresAt.Equal(c.Now().Add(5*time.Minute)) {
		t.Fatalf("unexpected timestamps: %+v", tok)
	}
	if tok.Status != domain.TokenPending {
		t.Fatalf("expected PENDING, got %s", tok.Status)
	}

	stored, err := ledger.FindByToken(context.Background(), tok.Token)
	if err != nil || stored.Email != "a@x.com" {
		t.Fatalf("token not persisted: %v %+v", err, stored)
	}
}

func TestVerificationLedger_DefaultWindow(t *testing.T) {
	ledger := NewVerificationLedger(newStubTokenRepo(), 0)
	if ledger.window != DefaultVerificationWindow {
		t.Fatalf("expected %v, got %v", DefaultVerificationWindow, ledger.window)
	}
}

func TestVerificationLedger_TokensAreUnique(t *testing.T) {
	ledger := NewVerificationLedger(newStubTokenRepo(), 0)
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		tok, err := ledger.Issue(context.Background(), "a@x.com")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, dup := seen[tok.Token]; dup {
			t.Fatalf("duplicate token after %d issues", i)
		}
		seen[tok.Token] = struct{}{}
	}
}

func TestVerificationLedger_MarkVerifiedOnce(t *testing.T) {
	ledger := NewVerificationLedger(newStubTokenRepo(), 0)
	tok, _ := ledger.Issue(context.Background(), "a@x.com")

	if err := ledger.MarkVerified(context.Background(), tok.Token); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := ledger.MarkVerified(context.Background(), tok.Token); !errors.Is(err, domain.ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed, got %v", err)
	}
}

func TestVerificationLedger_InsertFailure(t *testing.T) {
	repo := newStubTokenRepo()
	repo.insertErr = domain.ErrUnavailable
	ledger := NewVerificationLedger(repo, 0)

	if _, err := ledger.Issue(context.Background(), "a@x.com"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
