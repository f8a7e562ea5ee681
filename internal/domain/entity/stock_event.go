package entity

import "time"

// StockEventType tipo de transición de stock publicada a los suscriptores.
type StockEventType string

const (
	StockCreated  StockEventType = "CREATED"
	StockReserved StockEventType = "RESERVED"
	StockReleased StockEventType = "RELEASED"
	StockConsumed StockEventType = "CONSUMED"
	StockAdjusted StockEventType = "ADJUSTED"
)

// StockEvent evento de transición de stock. Se publica en el canal
// "stock-updates" con entrega al-menos-una-vez; los suscriptores deben
// tolerar duplicados. QuantityDelta es el cambio aplicado (negativo en
// consumos y ajustes REMOVE).
type StockEvent struct {
	Type          StockEventType `json:"type"`
	SKU           string         `json:"sku"`
	WarehouseID   string         `json:"warehouse_id"`
	QuantityDelta int64          `json:"quantity_delta"`
	Timestamp     time.Time      `json:"timestamp"`
}
