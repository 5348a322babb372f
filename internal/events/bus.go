package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Bus distributes domain events to subscribers with filtering support.
//
// Thread safety:
//   - All methods are safe for concurrent use.
//   - Publish never blocks on slow subscribers: events are dropped for a full
//     subscriber buffer and reported through the error handler, leaving other
//     subscribers unaffected.
type Bus interface {
	// Publish sends an event to all matching subscribers.
	// Returns an error only if the bus is closed.
	Publish(ctx context.Context, event Event) error

	// Subscribe creates a subscription with optional filtering.
	// Returns a channel receiving matching events and a cleanup function that
	// must be called to release the subscription.
	Subscribe(ctx context.Context, filter Filter, bufferSize int) (<-chan Event, func())

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// ErrorHandler is called when an event is dropped for a slow subscriber.
type ErrorHandler func(err error, context map[string]any)

// channelBus implements Bus with per-subscriber buffered channels and
// non-blocking sends.
type channelBus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscription
	closed      bool

	defaultBufferSize int
	errorHandler      ErrorHandler
}

type subscription struct {
	id       string
	ch       chan Event
	filter   Filter
	ctx      context.Context
	cancel   context.CancelFunc
	received atomic.Int64
	dropped  atomic.Int64
}

// Option is a functional option for configuring the bus.
type Option func(*channelBus)

// WithDefaultBufferSize sets the buffer size used when Subscribe is called
// with bufferSize <= 0. Default: 100 events.
func WithDefaultBufferSize(size int) Option {
	return func(b *channelBus) {
		if size > 0 {
			b.defaultBufferSize = size
		}
	}
}

// WithErrorHandler sets the handler invoked for dropped events.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(b *channelBus) {
		if handler != nil {
			b.errorHandler = handler
		}
	}
}

// NewBus creates a new in-process event bus.
func NewBus(opts ...Option) Bus {
	b := &channelBus{
		subscribers:       make(map[string]*subscription),
		defaultBufferSize: 100,
		errorHandler:      func(error, map[string]any) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends the event to every subscriber whose filter matches.
// A full subscriber buffer drops the event for that subscriber only.
func (b *channelBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("event bus is closed")
	}

	for _, sub := range b.subscribers {
		select {
		case <-sub.ctx.Done():
			continue
		default:
		}

		if !sub.filter.Matches(event) {
			continue
		}

		select {
		case sub.ch <- event:
			sub.received.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		default:
			sub.dropped.Add(1)
			b.errorHandler(
				fmt.Errorf("dropped event for slow subscriber"),
				map[string]any{
					"subscriber_id": sub.id,
					"event_type":    event.Type,
					"external_id":   event.ExternalID,
				},
			)
		}
	}
	return nil
}

// Subscribe registers a new subscription. The cleanup function must be called
// to prevent resource leaks.
func (b *channelBus) Subscribe(ctx context.Context, filter Filter, bufferSize int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bufferSize <= 0 {
		bufferSize = b.defaultBufferSize
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		id:     newSubscriberID(),
		ch:     make(chan Event, bufferSize),
		filter: filter,
		ctx:    subCtx,
		cancel: cancel,
	}
	b.subscribers[sub.id] = sub

	cleanup := func() { b.unsubscribe(sub.id) }
	return sub.ch, cleanup
}

func (b *channelBus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	sub.cancel()
	close(sub.ch)
	delete(b.subscribers, id)
}

// Close shuts down the bus. Idempotent.
func (b *channelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for id, sub := range b.subscribers {
		sub.cancel()
		close(sub.ch)
		delete(b.subscribers, id)
	}
	return nil
}

var subscriberCounter atomic.Uint64

func newSubscriberID() string {
	return fmt.Sprintf("sub-%d-%d", time.Now().UnixNano(), subscriberCounter.Add(1))
}
