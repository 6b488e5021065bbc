package server

import (
	"sync"

	"genomecmp/pkg/api"
)

// Hub fans state updates out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses that update and catches up on
// the next one.
type Hub struct {
	mu   sync.Mutex
	subs map[chan api.StateV1]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan api.StateV1]struct{})}
}

// Subscribe registers a new subscriber. Call cancel to unregister; the
// channel is closed afterwards.
func (h *Hub) Subscribe(buf int) (<-chan api.StateV1, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan api.StateV1, buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers v to every subscriber with room for it and returns
// how many received it.
func (h *Hub) Publish(v api.StateV1) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for ch := range h.subs {
		select {
		case ch <- v:
			n++
		default:
		}
	}
	return n
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
