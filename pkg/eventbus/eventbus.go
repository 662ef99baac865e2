package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event
type Handler func(event any)

// EventBus provides in-process pub/sub, keyed by event type. The aggregator
// publishes retry attempt and search lifecycle observations on it; metrics
// and logging observers subscribe at startup.
type EventBus struct {
	handlers map[reflect.Type][]Handler
	mu       sync.RWMutex
}

// New creates a new EventBus
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (e *EventBus) Subscribe(eventType any, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(eventType)
	e.handlers[t] = append(e.handlers[t], handler)
}

// Publish publishes an event to all subscribers asynchronously
func (e *EventBus) Publish(event any) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.handlers[reflect.TypeOf(event)] {
		go handler(event)
	}
}

// PublishSync publishes an event synchronously to all subscribers
func (e *EventBus) PublishSync(event any) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.handlers[reflect.TypeOf(event)] {
		handler(event)
	}
}

// HasSubscribers returns true if there are subscribers for the event type
func (e *EventBus) HasSubscribers(eventType any) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	handlers, ok := e.handlers[reflect.TypeOf(eventType)]
	return ok && len(handlers) > 0
}
