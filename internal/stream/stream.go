// Package stream fans out document and response lifecycle events to
// subscribers (SSE clients). Delivery is best-effort: slow subscribers
// drop events rather than block publishers.
package stream

import (
	"context"
	"sync"
	"time"
)

// Event describes a lifecycle change on a document or response.
type Event struct {
	Type       string    `json:"type"` // e.g. "document.processed", "response.sent"
	ResourceID string    `json:"resource_id"`
	Status     string    `json:"status,omitempty"`
	At         time.Time `json:"at"`
}

// Hub fan-outs events to all active subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// New initialises an empty hub.
func New() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will
// receive events. The channel is closed when the provided context ends.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
