// Package notify difunde los cambios de StorageState confirmados: en proceso (Hub, para SSE)
// y entre instancias vía Redis Pub/Sub.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

var _ inventory.Notifier = (*Hub)(nil)

// Hub reparte eventos a los suscriptores locales sin bloquear: si el buffer de un suscriptor
// está lleno, el evento se descarta para ese suscriptor.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan entity.StateChangedEvent
	next    uint64
	buffer  int
	dropped atomic.Uint64
}

// NewHub construye un Hub con el buffer indicado por suscriptor.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[uint64]chan entity.StateChangedEvent), buffer: buffer}
}

// Subscribe registra un suscriptor. La función devuelta lo da de baja y cierra el canal.
func (h *Hub) Subscribe() (<-chan entity.StateChangedEvent, func()) {
	ch := make(chan entity.StateChangedEvent, h.buffer)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish entrega el evento a los suscriptores locales. Nunca falla.
func (h *Hub) Publish(_ context.Context, ev entity.StateChangedEvent) error {
	h.Deliver(ev)
	return nil
}

// Deliver entrega el evento sin bloquear.
func (h *Hub) Deliver(ev entity.StateChangedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers cantidad de suscriptores activos.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped cantidad de entregas descartadas por suscriptores lentos.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
