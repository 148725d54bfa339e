package notify

import "sync"

// Hub keeps one Sink per session owner. Sinks live in memory only.
type Hub struct {
	mu    sync.Mutex
	opts  Options
	sinks map[string]*Sink
}

func NewHub(opts Options) *Hub {
	return &Hub{opts: opts, sinks: make(map[string]*Sink)}
}

// For returns the sink of owner, creating it on first use
func (h *Hub) For(owner string) *Sink {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sinks[owner]
	if !ok {
		s = NewSink(h.opts)
		h.sinks[owner] = s
	}
	return s
}

// Drop forgets the sink of owner
func (h *Hub) Drop(owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, owner)
}
