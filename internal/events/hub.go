// Package events fans out Store changes to live subscribers.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/celerix-dev/mobidash/internal/dashboard"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

// Event is the wire form of a dashboard.Change.
type Event struct {
	Kind       string    `json:"kind"`
	Collection string    `json:"collection"`
	ID         string    `json:"id,omitempty"`
	At         time.Time `json:"at"`
}

// Subscription receives events on C until Close is called.
type Subscription struct {
	C    <-chan Event
	ch   chan Event
	hub  *Hub
	once sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub delivers each published event to every subscriber. Publishing never
// blocks: a subscriber whose queue is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

var _ dashboard.Notifier = (*Hub)(nil)

// NewHub creates a hub with the given per-subscriber buffer (DefaultBuffer if <= 0).
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscribe registers a new subscriber. On a closed hub the returned channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Publish delivers e to every subscriber without waiting.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		select {
		case s.ch <- e:
		default:
			h.dropped.Add(1)
		}
	}
}

// Notify publishes a Store change.
func (h *Hub) Notify(c dashboard.Change) {
	h.Publish(Event{Kind: c.Op, Collection: c.Collection, ID: c.ID, At: c.At})
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close detaches every subscriber. Later Publish calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}
