// Package ports defines the interfaces between services and adapters.
package ports

import (
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// EventBus carries domain events from services to presenters and renderers.
// Publishers never know who listens.
//
// Thread-safety: implementations must allow Publish, Subscribe and
// Unsubscribe from any goroutine, including from inside a handler.
type EventBus interface {
	// Publish delivers event to every subscriber of its type, in
	// subscription order for synchronous implementations.
	// Handlers must return quickly.
	Publish(event domain.Event)

	// Subscribe registers handler for one event type.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown ids are ignored.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers handler for every event type.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers lets publishers skip building events nobody reads,
	// such as per-frame events.
	HasSubscribers(eventType domain.EventType) bool

	// Close drops all subscriptions. Later publishes are no-ops.
	Close() error
}

// EventFilter reports whether an event should reach a subscriber.
type EventFilter func(event domain.Event) bool

// FilteringEventBus adds filtered subscriptions.
type FilteringEventBus interface {
	EventBus

	// SubscribeFiltered registers handler for events of eventType that pass filter.
	// A nil filter accepts everything.
	SubscribeFiltered(eventType domain.EventType, filter EventFilter, handler domain.EventHandler) domain.SubscriptionID
}
