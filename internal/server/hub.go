package server

import (
	"context"
	"sync"

	"coinbase-orderbook-viewer/internal/domain"
)

// Hub keeps the latest depth published by a session and fans it out to
// websocket subscribers. Subscribers that are not ready miss the update.
type Hub struct {
	mu          sync.RWMutex
	rows        int
	latest      *domain.Depth
	subscribers map[chan domain.Depth]struct{}
}

func NewHub(rows int) *Hub {
	return &Hub{
		rows:        rows,
		subscribers: make(map[chan domain.Depth]struct{}),
	}
}

func (h *Hub) Publish(ctx context.Context, depth domain.Depth) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &depth
	for ch := range h.subscribers {
		select {
		case ch <- depth:
		default:
		}
	}
	return nil
}

func (h *Hub) Latest() (domain.Depth, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.latest == nil {
		return domain.Depth{}, false
	}
	return *h.latest, true
}

func (h *Hub) Rows() int {
	return h.rows
}

// Subscribe registers a new subscriber. The returned func unregisters it and
// closes the channel.
func (h *Hub) Subscribe() (<-chan domain.Depth, func()) {
	ch := make(chan domain.Depth, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
