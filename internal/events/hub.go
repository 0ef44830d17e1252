package events

import "sync"

// Hub fans events out to SSE subscribers. Slow subscribers miss events
// rather than blocking publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	buffer  int
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{}), buffer: 16}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, h.buffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			// drop if slow
		}
	}
}

// Emit builds an event envelope and publishes it.
func (h *Hub) Emit(reqID, typ string, data any) {
	if h == nil {
		return
	}
	h.Publish(MakeEvent(reqID, typ, Version, data))
}
