package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCooldown = 30 * time.Second

type setNXClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// ResendThrottle limits how often a verification email can be requested for
// the same address.
// Key format: verify:resend:<email>
type ResendThrottle struct {
	client   setNXClient
	cooldown time.Duration
}

// NewResendThrottle wraps client. If cooldown <= 0, defaultCooldown is used.
func NewResendThrottle(client *redis.Client, cooldown time.Duration) *ResendThrottle {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &ResendThrottle{client: client, cooldown: cooldown}
}

// Allow reports whether a resend for email may proceed and, if so, starts the
// cooldown window.
func (t *ResendThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.cooldown).Result()
	if err != nil {
		return false, unavailable("resend throttle", err)
	}
	return ok, nil
}

func (t *ResendThrottle) key(email string) string {
	return fmt.Sprintf("verify:resend:%s", email)
}
