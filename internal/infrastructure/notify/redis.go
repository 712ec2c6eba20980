package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aguahielo/movimientos-api/internal/application/inventory"
	"github.com/aguahielo/movimientos-api/internal/domain/entity"
)

var _ inventory.Notifier = (*RedisPublisher)(nil)

// envelope mensaje en el canal; Origin identifica la instancia que publicó.
type envelope struct {
	Origin string                   `json:"origin"`
	Event  entity.StateChangedEvent `json:"event"`
}

// NewInstanceID identificador de esta instancia para filtrar sus propios mensajes.
func NewInstanceID() string {
	return uuid.New().String()
}

// RedisPublisher publica los eventos como JSON en un canal Pub/Sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	origin  string
}

// NewRedisPublisher construye el publicador. El cliente lo cierra el caller.
func NewRedisPublisher(client *redis.Client, channel, origin string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, origin: origin}
}

// Publish envía el evento al canal.
func (p *RedisPublisher) Publish(ctx context.Context, ev entity.StateChangedEvent) error {
	data, err := json.Marshal(envelope{Origin: p.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("marshal state event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish state event: %w", err)
	}
	return nil
}

// RedisBridge escucha el canal y entrega al Hub local los eventos publicados por otras
// instancias, para que todos los clientes SSE vean todos los cambios.
type RedisBridge struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	log     zerolog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// NewRedisBridge construye el puente Redis → Hub.
func NewRedisBridge(client *redis.Client, channel, origin string, hub *Hub, log zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		origin:  origin,
		hub:     hub,
		log:     log,
		ready:   make(chan struct{}),
	}
}

// Ready se cierra cuando la suscripción quedó confirmada.
func (b *RedisBridge) Ready() <-chan struct{} {
	return b.ready
}

// Run bloquea hasta que ctx se cancele. Llamar en una goroutine.
func (b *RedisBridge) Run(ctx context.Context) error {
	ps := b.client.Subscribe(ctx, b.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })
	b.log.Info().Str("channel", b.channel).Msg("suscrito a cambios de estado")

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn().Err(err).Msg("mensaje de estado inválido")
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Deliver(env.Event)
		}
	}
}
