package stream

import (
	"context"
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := h.Subscribe(ctx)
	b := h.Subscribe(ctx)

	evt := Event{Type: "response.sent", ResourceID: "r1", Status: "sent", At: time.Now()}
	h.Publish(evt)

	for _, ch := range []<-chan Event{a, b} {
		select {
		case got := <-ch:
			if got.ResourceID != "r1" || got.Type != "response.sent" {
				t.Fatalf("unexpected event: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHubUnsubscribeOnContextCancel(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := h.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected channel close, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Publishing after unsubscribe must not panic or block.
	h.Publish(Event{Type: "document.processed", ResourceID: "d1"})
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := h.Subscribe(ctx)
	for i := 0; i < 100; i++ {
		h.Publish(Event{Type: "response.priced", ResourceID: "r1"})
	}

	// The buffer holds 16; the rest were dropped, not queued.
	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count == 0 || count > 16 {
				t.Fatalf("unexpected delivered count: %d", count)
			}
			return
		}
	}
}
