package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// Ensure RedisNotifier implements stock.Notifier.
var _ stock.Notifier = (*RedisNotifier)(nil)

// DefaultChannel canal de pub/sub de las transiciones de stock.
const DefaultChannel = "stock-updates"

const closeTimeout = 5 * time.Second

// RedisNotifier fan-out de eventos de stock vía Redis Pub/Sub. Los
// suscriptores de todas las instancias del proceso reciben cada evento
// (al-menos-una-vez); se usa, entre otras cosas, para invalidar cachés a
// nivel de clúster y no solo localmente.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *logger.Logger

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
}

// NewRedisNotifier construye el notificador con un cliente existente.
// El caller conserva la propiedad del cliente. channel vacío usa DefaultChannel.
func NewRedisNotifier(client *redis.Client, channel string, log *logger.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		log:     log,
		doneCh:  make(chan struct{}),
	}
}

// Publish publica el evento en el canal (fire-and-forget). Un fallo se
// envuelve en ErrNotificationDelivery; el caller lo loguea sin abortar la
// mutación ya confirmada.
func (n *RedisNotifier) Publish(ctx context.Context, ev entity.StockEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: serializar evento: %v", domain.ErrNotificationDelivery, err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: publicar en %s: %v", domain.ErrNotificationDelivery, n.channel, err)
	}
	n.log.Debug().
		Str("type", string(ev.Type)).
		Str("sku", ev.SKU).
		Str("channel", n.channel).
		Msg("evento de stock publicado")
	return nil
}

// Subscribe escucha el canal e invoca handler por cada evento recibido,
// incluidos los publicados por otras instancias. Bloquea hasta que ctx se
// cancele o se llame Close; ejecutar en una goroutine. Los errores y pánicos
// del handler se aíslan por mensaje: nunca llegan al publicador ni frenan a
// otros suscriptores.
func (n *RedisNotifier) Subscribe(ctx context.Context, handler func(ev entity.StockEvent)) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return fmt.Errorf("la suscripción ya está corriendo")
	}
	n.running = true
	subCtx, cancel := context.WithCancel(ctx)
	n.cancelFn = cancel
	n.mu.Unlock()

	pubsub := n.client.Subscribe(subCtx, n.channel)
	defer pubsub.Close()

	// Esperar la confirmación de la suscripción
	if _, err := pubsub.Receive(subCtx); err != nil {
		n.mu.Lock()
		n.running = false
		n.mu.Unlock()
		return fmt.Errorf("suscribirse a %s: %w", n.channel, err)
	}

	n.log.Info().Str("channel", n.channel).Msg("suscrito al canal de eventos de stock")

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			n.log.Info().Str("channel", n.channel).Msg("suscripción de eventos detenida")
			n.stop()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				n.log.Warn().Str("channel", n.channel).Msg("canal de eventos cerrado")
				n.stop()
				return nil
			}
			var ev entity.StockEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				n.log.Error().Err(err).Str("payload", msg.Payload).Msg("evento de stock ilegible")
				continue
			}
			n.dispatch(handler, ev)
		}
	}
}

// dispatch aísla el handler: un pánico se loguea y no tumba el loop.
func (n *RedisNotifier) dispatch(handler func(ev entity.StockEvent), ev entity.StockEvent) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().
				Str("type", string(ev.Type)).
				Str("sku", ev.SKU).
				Any("panic", r).
				Msg("pánico en el handler de eventos de stock")
		}
	}()
	handler(ev)
}

func (n *RedisNotifier) stop() {
	n.mu.Lock()
	n.running = false
	n.mu.Unlock()
	n.doneOnce.Do(func() { close(n.doneCh) })
}

// Close detiene la suscripción de forma determinista. No cierra el cliente
// Redis compartido.
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	cancelFn := n.cancelFn
	running := n.running
	n.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		if running {
			select {
			case <-n.doneCh:
			case <-time.After(closeTimeout):
				n.log.Warn().Msg("timeout esperando el fin de la suscripción")
			}
		}
	}
	return nil
}
