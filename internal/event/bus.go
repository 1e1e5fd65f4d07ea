package event

import "sync"

// CartChange describes a successful cart mutation.
type CartChange struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	LineCount int    `json:"line_count"`
}

// Bus is an in-process broadcast channel for cart changes. Every subscriber
// registered at publish time receives the change exactly once; delivery is
// fire-and-forget and does not block the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan CartChange
	closed      bool
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is buffered; a subscriber that falls behind drops the oldest notification
// rather than stalling publishers.
func (b *Bus) Subscribe() <-chan CartChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan CartChange, 16)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers the change to all current subscribers.
func (b *Bus) Publish(change CartChange) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- change:
		default:
			// Drop the oldest entry to make room for the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- change:
			default:
			}
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
