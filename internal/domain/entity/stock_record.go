package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Reservas-api/internal/domain"
)

// AdjustDirection sentido de un ajuste manual de inventario.
type AdjustDirection string

const (
	AdjustAdd    AdjustDirection = "ADD"
	AdjustRemove AdjustDirection = "REMOVE"
)

// StockRecord representa el stock físico de un SKU en una bodega.
//
// Quantity es el total de unidades en mano; ReservedQuantity son las unidades
// retenidas provisionalmente contra ese total. Tras cada mutación confirmada
// debe cumplirse 0 <= ReservedQuantity <= Quantity. La pareja (SKU,
// WarehouseID) es única. Los registros nunca se borran físicamente: se
// desactivan con IsActive = false, conservando el historial.
//
// Version se incrementa en cada mutación persistida. El bloqueo de fila ya
// serializa las escrituras; la versión queda como testigo optimista para
// auditoría y detección de carreras.
type StockRecord struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	WarehouseID       string          `json:"warehouse_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Quantity          int64           `json:"quantity"`
	ReservedQuantity  int64           `json:"reserved_quantity"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
	Price             decimal.Decimal `json:"price"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	IsActive          bool            `json:"is_active"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AvailableQuantity unidades vendibles: en mano menos reservadas.
// Derivada, nunca se persiste.
func (s *StockRecord) AvailableQuantity() int64 {
	return s.Quantity - s.ReservedQuantity
}

// CanReserve indica si se pueden reservar qty unidades: el registro debe
// estar activo y tener disponible suficiente.
func (s *StockRecord) CanReserve(qty int64) bool {
	return s.IsActive && s.AvailableQuantity() >= qty
}

// Reserve retiene qty unidades contra el disponible.
// Si no se puede, retorna ErrInsufficientStock y no modifica nada.
func (s *StockRecord) Reserve(qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if !s.CanReserve(qty) {
		return domain.ErrInsufficientStock
	}
	s.ReservedQuantity += qty
	return nil
}

// Release devuelve qty unidades reservadas al disponible.
// Liberar más de lo reservado retorna ErrOverRelease sin modificar nada.
func (s *StockRecord) Release(qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if qty > s.ReservedQuantity {
		return domain.ErrOverRelease
	}
	s.ReservedQuantity -= qty
	return nil
}

// Consume descuenta qty unidades físicas del total y limpia la reserva
// equivalente si existe. Que el consumo finalice la reserva sin exigir un
// Release previo es intencional: consumir es cumplir la reserva. Con reserva
// previa de qty, Consume(qty) deja Quantity-qty y ReservedQuantity-qty; sin
// reserva previa descuenta solo del total.
func (s *StockRecord) Consume(qty int64) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if qty > s.Quantity {
		return domain.ErrInsufficientStock
	}
	s.Quantity -= qty
	s.ReservedQuantity -= qty
	if s.ReservedQuantity < 0 {
		s.ReservedQuantity = 0
	}
	return nil
}

// Adjust ajusta el total en mano. ADD suma sin condiciones; REMOVE falla con
// ErrInsufficientStock si delta supera el disponible (nunca puede dejar
// ReservedQuantity > Quantity).
func (s *StockRecord) Adjust(delta int64, direction AdjustDirection) error {
	if delta <= 0 {
		return domain.ErrInvalidInput
	}
	switch direction {
	case AdjustAdd:
		s.Quantity += delta
	case AdjustRemove:
		if delta > s.AvailableQuantity() {
			return domain.ErrInsufficientStock
		}
		s.Quantity -= delta
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
