package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

var (
	ErrQueueFull = fmt.Errorf("%w: notification queue full", domain.ErrUnavailable)
	ErrStopped   = fmt.Errorf("%w: notification dispatcher stopped", domain.ErrUnavailable)
)

type notification struct {
	topic   string
	payload []byte
}

// Dispatcher hands notifications to a fixed set of workers that forward them
// to the underlying publisher. Identical payloads always land on the same
// worker, so a retried message is never delivered ahead of the original.
type Dispatcher struct {
	workers []chan notification
	next    ports.NotificationPublisher
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers workers, each buffering
// up to buffer messages. Non-positive values fall back to the defaults.
func NewDispatcher(numWorkers, buffer int, next ports.NotificationPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan notification, numWorkers),
		next:    next,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan notification, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled or
// after Stop has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues payload without blocking. The caller's context is not
// carried to the worker; delivery outlives the request that triggered it.
func (d *Dispatcher) Publish(_ context.Context, topic string, payload []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	n := notification{topic: topic, payload: payload}
	select {
	case d.workers[d.shardIndex(payload)] <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new notifications, lets workers drain what is queued and waits
// for them to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a payload deterministically to a worker index.
func (d *Dispatcher) shardIndex(payload []byte) int {
	h := fnv.New32a()
	_, _ = h.Write(payload)
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n notification) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.next.Publish(ctx, n.topic, n.payload); err != nil {
		d.log.Error().Err(err).
			Str("topic", n.topic).
			Int("worker_id", id).
			Msg("notification publish failed")
	}
}
