package events

import (
	"sync"
	"time"
)

// Event kinds published by the upstream client pipeline.
const (
	KindQuotaExceeded = "quota-exceeded"
	KindNetworkError  = "network-error"
)

// Event is an out-of-band notification for the dashboard UI. It never
// alters the outcome of the request that produced it.
type Event struct {
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	RetryAfter string    `json:"retryAfter,omitempty"`
	At         time.Time `json:"at"`
}

// Handler consumes published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Bus is a minimal in-process publish/subscribe hub. It is injected into
// both the HTTP pipeline and the notification surface so neither depends on
// a process-global.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber.
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}
