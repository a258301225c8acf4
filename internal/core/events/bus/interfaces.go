package bus

import "time"

// EventBus is an in-process pub/sub bus for simulation lifecycle events.
//
// Delivery is synchronous: Publish runs every matching handler in the caller's
// goroutine, so a frame never observes an event after it has moved on.
// Handler errors are joined and returned from Publish.
type EventBus interface {
	Publish(event Event) error
	PublishBatch(events ...Event) error
	// Subscribe registers handler for eventType. The wildcard "*" receives every event.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil subscription is ignored.
	Unsubscribe(sub Subscription) error

	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(Event) error

// Subscription is a handle returned by Subscribe.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusMetrics counts deliveries since the bus was created.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
}

// Wildcard subscribes to every event type.
const Wildcard = "*"
