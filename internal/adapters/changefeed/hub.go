package changefeed

import (
	"sync"

	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// Hub fans table change signals out to subscribers in process.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func()
}

var _ ports.ChangeSubscriber = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]func())}
}

func (h *Hub) Subscribe(table string, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	if h.subs[table] == nil {
		h.subs[table] = make(map[int]func())
	}
	h.subs[table][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[table], id)
			if len(h.subs[table]) == 0 {
				delete(h.subs, table)
			}
		})
	}
}

// Publish calls every subscriber of table. Callbacks run outside the lock.
func (h *Hub) Publish(table string) {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs[table]))
	for _, fn := range h.subs[table] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions for table.
func (h *Hub) Subscribers(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}
