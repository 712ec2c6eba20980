package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/infrastructure/notify"
)

// EventsHandler transmite por SSE los cambios de StorageState confirmados.
type EventsHandler struct {
	hub       *notify.Hub
	heartbeat time.Duration
	done      <-chan struct{}
	log       zerolog.Logger
}

// NewEventsHandler construye el handler. Al cerrarse done se terminan los streams abiertos.
func NewEventsHandler(hub *notify.Hub, heartbeat time.Duration, done <-chan struct{}, log zerolog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &EventsHandler{hub: hub, heartbeat: heartbeat, done: done, log: log}
}

// Stream godoc
// @Summary      Suscribirse a cambios de estado (SSE)
// @Description  Eventos "state" con storage_id, element_id, quantity y version. Es una pista de
// @Description  invalidación: el cliente vuelve a consultar /api/inventory/state.
// @Tags         inventory
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE stream"
// @Router       /api/inventory/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, unsubscribe := h.hub.Subscribe()
	userID := GetUserID(c)
	h.log.Debug().Str("user_id", userID).Msg("cliente SSE conectado")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		defer h.log.Debug().Str("user_id", userID).Msg("cliente SSE desconectado")

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case <-h.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					h.log.Warn().Err(err).Msg("evento de estado no serializable")
					continue
				}
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprintf(w, ": heartbeat %d\n\n", time.Now().Unix())
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
