package events

import "testing"

func TestBusPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var first, second []Event
	bus.Subscribe(func(evt Event) { first = append(first, evt) })
	bus.Subscribe(func(evt Event) { second = append(second, evt) })

	bus.Publish(Event{Kind: KindQuotaExceeded, Message: "daily quota exceeded", RetryAfter: "3600"})
	bus.Publish(Event{Kind: KindNetworkError, Message: "connection refused"})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both subscribers to see 2 events got %d and %d", len(first), len(second))
	}
	if first[0].Kind != KindQuotaExceeded || first[0].RetryAfter != "3600" {
		t.Fatalf("unexpected first event %+v", first[0])
	}
	if first[1].Kind != KindNetworkError {
		t.Fatalf("unexpected second event %+v", first[1])
	}
	if first[0].At.IsZero() {
		t.Fatal("expected publish to stamp event time")
	}
}

func TestBusNilHandlerIgnored(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(nil)
	bus.Publish(Event{Kind: KindNetworkError, Message: "x"})
}
