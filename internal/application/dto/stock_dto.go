package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
)

// CreateStockRequest body para POST /api/stock.
type CreateStockRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Quantity          int64           `json:"quantity"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
	Price             decimal.Decimal `json:"price"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
}

// QuantityRequest body para reserve/release/consume.
type QuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// AdjustStockRequest body para PATCH /api/stock/:sku.
// Direction: "ADD" | "REMOVE".
type AdjustStockRequest struct {
	Delta     int64  `json:"delta"`
	Direction string `json:"direction"`
}

// StockResponse snapshot de un registro de stock en respuestas HTTP.
// AvailableQuantity es derivada (quantity - reserved_quantity).
type StockResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	WarehouseID       string          `json:"warehouse_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Quantity          int64           `json:"quantity"`
	ReservedQuantity  int64           `json:"reserved_quantity"`
	AvailableQuantity int64           `json:"available_quantity"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
	Price             decimal.Decimal `json:"price"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	IsActive          bool            `json:"is_active"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FromStockRecord mapea la entidad al DTO de respuesta.
func FromStockRecord(rec *entity.StockRecord) StockResponse {
	return StockResponse{
		ID:                rec.ID,
		SKU:               rec.SKU,
		WarehouseID:       rec.WarehouseID,
		Name:              rec.Name,
		Description:       rec.Description,
		Quantity:          rec.Quantity,
		ReservedQuantity:  rec.ReservedQuantity,
		AvailableQuantity: rec.AvailableQuantity(),
		MinimumStockLevel: rec.MinimumStockLevel,
		Price:             rec.Price,
		Metadata:          rec.Metadata,
		IsActive:          rec.IsActive,
		Version:           rec.Version,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

// FromStockRecords mapea una lista de entidades (listados de stock bajo).
func FromStockRecords(recs []*entity.StockRecord) []StockResponse {
	out := make([]StockResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromStockRecord(rec))
	}
	return out
}
