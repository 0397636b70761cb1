// Package eventbus provides implementations of the EventBus interface.
// This package contains the synchronous event bus implementation.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// ErrClosed is returned by Close on an already closed bus.
var ErrClosed = errors.New("event bus already closed")

// highRate lists event types published on every sampler tick.
// They are not traced at debug level to keep logs readable.
var highRate = map[domain.EventType]bool{
	domain.EventFrequencySnapshot: true,
	domain.EventFrameReady:        true,
	domain.EventTrackProgress:     true,
}

// SyncEventBus is a synchronous implementation of the EventBus interface.
// Events are delivered to handlers synchronously in the order they were subscribed.
//
// Thread-safety: This implementation is thread-safe. Multiple goroutines can
// publish events and subscribe/unsubscribe handlers concurrently. Handlers may
// publish further events or unsubscribe themselves without deadlocking.
type SyncEventBus struct {
	logger *slog.Logger

	// subscribers map event types to their subscriptions, in subscription order
	subscribers map[domain.EventType][]subscription

	// allSubscribers contains handlers that receive all events
	allSubscribers []subscription

	// mu protects subscribers, allSubscribers and closed
	mu sync.RWMutex

	idCounter atomic.Uint64
	closed    bool
}

type subscription struct {
	id      domain.SubscriptionID
	filter  ports.EventFilter
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
// A nil logger disables logging.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncEventBus{
		logger:      logger.With(slog.String("adapter", "eventbus")),
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// Publish publishes an event to all subscribers of that event type.
// Handlers are called synchronously in the order they subscribed,
// type-specific handlers first, then wildcard handlers.
//
// If the event bus is closed, this method does nothing.
// Panics in handlers are recovered and logged, but do not stop other handlers.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	eventType := event.Type()
	targets := make([]subscription, 0, len(bus.subscribers[eventType])+len(bus.allSubscribers))
	targets = append(targets, bus.subscribers[eventType]...)
	targets = append(targets, bus.allSubscribers...)
	bus.mu.RUnlock()

	if !highRate[eventType] {
		bus.logger.Debug("event published",
			slog.String("event_type", string(eventType)),
			slog.Int("handlers", len(targets)))
	}

	for _, sub := range targets {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		bus.callHandler(sub, event)
	}
}

// callHandler calls an event handler and recovers from panics.
func (bus *SyncEventBus) callHandler(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("subscription", string(sub.id)),
				slog.String("event_type", string(event.Type())))
		}
	}()
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// Returns a unique subscription ID that can be used to unsubscribe.
//
// Subscribing to a closed bus returns an empty ID and the handler is never called.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.SubscribeFiltered(eventType, nil, handler)
}

// SubscribeFiltered registers a handler that only receives events accepted by filter.
// A nil filter accepts every event.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		bus.logger.Warn("subscribe on closed event bus", slog.String("event_type", string(eventType)))
		return ""
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-%d", bus.idCounter.Add(1)))
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{
		id:      id,
		filter:  filter,
		handler: handler,
	})
	return id
}

// SubscribeAll registers a handler that receives all events regardless of type.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		bus.logger.Warn("subscribe on closed event bus", slog.String("event_type", "*"))
		return ""
	}

	id := domain.SubscriptionID(fmt.Sprintf("sub-all-%d", bus.idCounter.Add(1)))
	bus.allSubscribers = append(bus.allSubscribers, subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a previously registered event handler.
// The relative order of the remaining handlers is preserved.
// If the subscription ID is invalid or already unsubscribed, this is a no-op.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	if id == "" {
		return
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	match := func(s subscription) bool { return s.id == id }

	for eventType, subs := range bus.subscribers {
		if i := slices.IndexFunc(subs, match); i >= 0 {
			// Publish may hold a copy of the old slice; never mutate it in place.
			bus.subscribers[eventType] = slices.Concat(subs[:i], subs[i+1:])
			if len(bus.subscribers[eventType]) == 0 {
				delete(bus.subscribers, eventType)
			}
			return
		}
	}

	if i := slices.IndexFunc(bus.allSubscribers, match); i >= 0 {
		bus.allSubscribers = slices.Concat(bus.allSubscribers[:i], bus.allSubscribers[i+1:])
	}
}

// HasSubscribers returns true if there are any active subscriptions for the given event type.
// Publishers of high-rate events use it to skip building payloads nobody reads.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[eventType]) > 0 || len(bus.allSubscribers) > 0
}

// Close shuts down the event bus and clears all subscriptions.
// Returns ErrClosed if already closed.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil
	return nil
}

// SubscriberCount returns the number of active subscriptions.
// This counts both type-specific and wildcard subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.allSubscribers)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

var _ ports.FilteringEventBus = (*SyncEventBus)(nil)
