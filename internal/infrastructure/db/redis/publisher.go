package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher delivers notification payloads over Redis pub/sub. Delivery is
// at-most-once: a message with no subscriber is dropped by Redis.
type Publisher struct {
	client publishClient
}

// NewPublisher wraps client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return unavailable("redis publish "+topic, err)
	}
	return nil
}
