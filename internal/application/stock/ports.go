package stock

import (
	"context"
	"time"

	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio atado a esa tx. Bloqueo, validación y persistencia forman una
// sola unidad: si fn retorna error (o el proceso cae antes del Commit) el
// registro queda intacto.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.StockRepository) error) error
}

// Cache puerto hacia el backend de caché. Es una optimización de rendimiento,
// nunca una dependencia de correctitud: Get reporta miss de inmediato ante
// cualquier fallo y el caller hace la lectura de respaldo; un Set o Del
// fallido no debe abortar la operación de negocio que lo rodea.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Notifier puerto de publicación de eventos de stock (fire-and-forget,
// al-menos-una-vez hacia los suscriptores, locales y de otras instancias).
type Notifier interface {
	Publish(ctx context.Context, ev entity.StockEvent) error
}
