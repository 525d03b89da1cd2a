// Package notify provides the toast hub for transient user-visible
// notices. Every user-impacting failure is surfaced here; nothing is
// logged to the console alone.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Level classifies a notice for display styling.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient user-visible notification.
type Notice struct {
	Seq   uint64
	Level Level
	Text  string
}

// Sink receives broadcast notices. Implementations must not block.
type Sink interface {
	Notify(Notice)
}

// subscription represents a subscriber's registration.
type subscription struct {
	id   string
	sink Sink
}

// Hub fans notices out to all subscribers in sequence order.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	seq           uint64
}

// NewHub creates a new notice hub.
func NewHub() *Hub {
	return &Hub{subscriptions: make(map[string]*subscription)}
}

// Subscribe adds a sink and returns its subscription ID.
func (h *Hub) Subscribe(sink Sink) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New().String()
	h.subscriptions[id] = &subscription{id: id, sink: sink}
	return id
}

// Unsubscribe removes a subscription.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscriptions, id)
}

// Broadcast assigns the next sequence number and delivers the notice to
// every subscriber. Sinks are invoked outside the lock.
func (h *Hub) Broadcast(level Level, text string) {
	h.mu.Lock()
	h.seq++
	n := Notice{Seq: h.seq, Level: level, Text: text}
	sinks := make([]Sink, 0, len(h.subscriptions))
	for _, sub := range h.subscriptions {
		sinks = append(sinks, sub.sink)
	}
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Notify(n)
	}
}

// Info broadcasts an informational notice.
func (h *Hub) Info(text string) { h.Broadcast(LevelInfo, text) }

// Warn broadcasts a warning notice.
func (h *Hub) Warn(text string) { h.Broadcast(LevelWarn, text) }

// Error broadcasts an error notice.
func (h *Hub) Error(text string) { h.Broadcast(LevelError, text) }

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// Close removes all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = make(map[string]*subscription)
}
