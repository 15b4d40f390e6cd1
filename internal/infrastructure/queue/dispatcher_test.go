package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative/account-service/internal/core/domain"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]string
	err      error
	block    chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{messages: map[string][]string{}}
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if p.block != nil {
		<-p.block
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages[topic] = append(p.messages[topic], string(payload))
	return nil
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[topic])
}

func TestDispatcher_DeliversAfterCallerContextEnds(t *testing.T) {
	pub := newRecordingPublisher()
	d := NewDispatcher(2, 8, pub, zerolog.Nop())
	d.Start(context.Background())

	reqCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Publish(reqCtx, "user-verification", []byte(`{"email":"a@x.com"}`)))
	require.NoError(t, d.Publish(reqCtx, "user-verification", []byte(`{"email":"b@x.com"}`)))
	cancel()

	d.Stop()
	assert.Equal(t, 2, pub.count("user-verification"))
}

func TestDispatcher_QueueFull(t *testing.T) {
	pub := newRecordingPublisher()
	pub.block = make(chan struct{})
	d := NewDispatcher(1, 1, pub, zerolog.Nop())
	d.Start(context.Background())

	// The worker takes the first message and blocks; the second fills the buffer.
	require.NoError(t, d.Publish(context.Background(), "t", []byte("1")))
	require.Eventually(t, func() bool { return len(d.workers[0]) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, d.Publish(context.Background(), "t", []byte("2")))

	err := d.Publish(context.Background(), "t", []byte("3"))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))

	close(pub.block)
	d.Stop()
	assert.Equal(t, 2, pub.count("t"))
}

func TestDispatcher_PublishAfterStop(t *testing.T) {
	d := NewDispatcher(1, 1, newRecordingPublisher(), zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	assert.ErrorIs(t, d.Publish(context.Background(), "t", []byte("x")), ErrStopped)
}

func TestDispatcher_PublishErrorsAreSwallowed(t *testing.T) {
	pub := newRecordingPublisher()
	pub.err = errors.New("redis down")
	d := NewDispatcher(1, 4, pub, zerolog.Nop())
	d.Start(context.Background())

	require.NoError(t, d.Publish(context.Background(), "t", []byte("x")))
	d.Stop()
	assert.Equal(t, 0, pub.count("t"))
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, 1, newRecordingPublisher(), zerolog.Nop())
	payload := []byte(`{"email":"a@x.com"}`)

	first := d.shardIndex(payload)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex(payload))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(0, 0, newRecordingPublisher(), zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
	assert.Equal(t, channelBuffer, cap(d.workers[0]))
}
