package events

import "sync"

// DefaultFeedCapacity bounds the number of retained notifications.
const DefaultFeedCapacity = 50

// Feed retains the most recent events published on a bus so the dashboard
// can poll for notifications it missed.
type Feed struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
}

// NewFeed subscribes a bounded feed to the bus.
func NewFeed(bus *Bus, capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	f := &Feed{events: make([]Event, capacity)}
	bus.Subscribe(f.append)
	return f
}

func (f *Feed) append(evt Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := (f.start + f.count) % len(f.events)
	f.events[idx] = evt
	if f.count < len(f.events) {
		f.count++
		return
	}
	f.start = (f.start + 1) % len(f.events)
}

// Recent returns the retained events, newest first.
func (f *Feed) Recent() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Event, 0, f.count)
	for i := f.count - 1; i >= 0; i-- {
		out = append(out, f.events[(f.start+i)%len(f.events)])
	}
	return out
}

// Clear discards all retained events.
func (f *Feed) Clear() {
	f.mu.Lock()
	f.start, f.count = 0, 0
	f.mu.Unlock()
}
