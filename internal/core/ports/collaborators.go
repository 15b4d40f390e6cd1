package ports

import (
	"context"
	"time"
)

// PasswordHasher is a one-way password hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) error
}

// NotificationPublisher delivers a JSON payload to a topic. Callers treat it
// as best-effort.
type NotificationPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Observer receives operational signals from the core.
type Observer interface {
	// Operation records the outcome ("ok" or an error kind) and latency of a
	// lifecycle operation.
	Operation(name, outcome string, elapsed time.Duration)
	// Inconsistency records a detected divergence between stores, e.g. an
	// object written without metadata.
	Inconsistency(kind string)
}
