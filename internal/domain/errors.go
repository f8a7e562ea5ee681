package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Los errores de negocio (not found, stock insuficiente, sobre-liberación)
// abortan la transacción y llegan al caller sin modificar. ErrLockTimeout es
// reintentable. Los errores de caché y notificación son degradaciones de
// infraestructura: se registran en el log pero nunca abortan una mutación
// ya confirmada.
var (
	ErrNotFound             = errors.New("registro de stock no encontrado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrOverRelease          = errors.New("no se puede liberar más de lo reservado")
	ErrLockTimeout          = errors.New("tiempo de espera agotado al bloquear la fila")
	ErrCacheUnavailable     = errors.New("caché no disponible")
	ErrNotificationDelivery = errors.New("no se pudo publicar la notificación")
	ErrDuplicate            = errors.New("ya existe stock para ese SKU en la bodega")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
)
