package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// fakeCache implementación mínima de stock.Cache que registra los borrados.
type fakeCache struct {
	mu     sync.Mutex
	dels   []string
	delErr error
}

func (c *fakeCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (c *fakeCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	return c.delErr
}

func event(evType entity.StockEventType) entity.StockEvent {
	return entity.StockEvent{
		Type:          evType,
		SKU:           "SKU-1",
		WarehouseID:   "wh-1",
		QuantityDelta: 3,
		Timestamp:     time.Now().UTC(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// dispatch
// ──────────────────────────────────────────────────────────────────────────────

// Un pánico del handler se aísla: no llega al loop de suscripción.
func TestDispatch_AislaPanicosDelHandler(t *testing.T) {
	n := NewRedisNotifier(nil, "", logger.Nop())

	require.NotPanics(t, func() {
		n.dispatch(func(entity.StockEvent) {
			panic("handler roto")
		}, event(entity.StockReserved))
	})
}

func TestDispatch_EntregaElEventoAlHandler(t *testing.T) {
	n := NewRedisNotifier(nil, "", logger.Nop())

	var got entity.StockEvent
	n.dispatch(func(ev entity.StockEvent) { got = ev }, event(entity.StockConsumed))

	assert.Equal(t, entity.StockConsumed, got.Type)
	assert.Equal(t, "SKU-1", got.SKU)
	assert.Equal(t, int64(3), got.QuantityDelta)
}

func TestNewRedisNotifier_CanalPorDefecto(t *testing.T) {
	n := NewRedisNotifier(nil, "", logger.Nop())
	assert.Equal(t, DefaultChannel, n.channel)

	n = NewRedisNotifier(nil, "otro-canal", logger.Nop())
	assert.Equal(t, "otro-canal", n.channel)
}

// Close sin suscripción activa es inocuo.
func TestClose_SinSuscripcionEsInocuo(t *testing.T) {
	n := NewRedisNotifier(nil, "", logger.Nop())
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler de invalidación de caché
// ──────────────────────────────────────────────────────────────────────────────

func TestCacheInvalidationHandler_BorraLaClavePuntual(t *testing.T) {
	cache := &fakeCache{}
	handler := NewCacheInvalidationHandler(cache, logger.Nop())

	handler(event(entity.StockReserved))

	require.Len(t, cache.dels, 1)
	assert.Equal(t, stock.PointKey("wh-1", "SKU-1"), cache.dels[0])
}

// Borrar es idempotente: recibir el mismo evento dos veces (entrega
// al-menos-una-vez) solo repite el borrado.
func TestCacheInvalidationHandler_EntregaDuplicadaEsInocua(t *testing.T) {
	cache := &fakeCache{}
	handler := NewCacheInvalidationHandler(cache, logger.Nop())

	ev := event(entity.StockAdjusted)
	handler(ev)
	handler(ev)

	assert.Len(t, cache.dels, 2)
}

// Un fallo del backend de caché no escapa del handler.
func TestCacheInvalidationHandler_FalloDeCacheNoPanics(t *testing.T) {
	cache := &fakeCache{delErr: errors.New("conexión rechazada")}
	handler := NewCacheInvalidationHandler(cache, logger.Nop())

	require.NotPanics(t, func() { handler(event(entity.StockReleased)) })
}
