package notify

import (
	"context"

	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// NewCacheInvalidationHandler devuelve el handler que borra la clave puntual
// del SKU por cada evento recibido. Registrado sobre el notificador en el
// arranque, mantiene la invalidación a nivel de clúster: las mutaciones de
// otras instancias también tumban la copia local en Redis. Borrar es
// idempotente, así que la entrega al-menos-una-vez no molesta.
func NewCacheInvalidationHandler(cache stock.Cache, log *logger.Logger) func(ev entity.StockEvent) {
	return func(ev entity.StockEvent) {
		key := stock.PointKey(ev.WarehouseID, ev.SKU)
		if err := cache.Del(context.Background(), key); err != nil {
			log.Warn().Err(err).
				Str("key", key).
				Str("type", string(ev.Type)).
				Msg("no se pudo invalidar la caché desde el evento")
		}
	}
}
