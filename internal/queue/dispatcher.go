package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrBacklogFull      = errors.New("audit backlog full")
	ErrDispatcherClosed = errors.New("audit dispatcher closed")
)

// Sink receives events synchronously.  Publisher and Discard are sinks.
type Sink interface {
	Publish(ctx context.Context, ev AccessEvent) error
}

// Dispatcher decouples request handlers from the broker.  Publish only
// enqueues and never blocks; a single worker drains the queue into the
// sink, giving each event its own timeout.  When the backlog is full new
// events are dropped and counted in the log.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan AccessEvent
	done   chan struct{}
}

func NewDispatcher(sink Sink, backlog int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if backlog < 1 {
		backlog = 1
	}
	d := &Dispatcher{
		sink:    sink,
		timeout: timeout,
		log:     log,
		events:  make(chan AccessEvent, backlog),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues ev.  ctx is not used to wait: the call returns at once.
func (d *Dispatcher) Publish(_ context.Context, ev AccessEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.events <- ev:
		return nil
	default:
		d.log.Warn("audit: backlog full, dropping event", zap.String("outcome", ev.Outcome), zap.String("module_id", ev.ModuleID))
		return ErrBacklogFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		_ = d.sink.Publish(ctx, ev)
		cancel()
	}
}

// Close stops accepting events and waits until the backlog is delivered or
// ctx ends.  Events still queued when ctx ends are lost and reported.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.log.Warn("audit: shutdown before backlog drained", zap.Int("pending", len(d.events)))
		return ctx.Err()
	}
}
