package repository

import (
	"context"

	"github.com/jhoicas/Reservas-api/internal/domain/entity"
)

// StockRepository define el puerto hacia el almacén durable (DIP). El almacén
// es el único dueño del estado autoritativo: toda mutación pasa por
// LockAndRead + Save dentro de la misma transacción.
type StockRepository interface {
	// LockAndRead lee el registro activo del SKU en la bodega y bloquea la
	// fila (SELECT FOR UPDATE). Solo tiene sentido sobre un repositorio atado
	// a una transacción; el bloqueo se mantiene hasta Commit/Rollback.
	// Retorna domain.ErrNotFound si no hay registro activo y
	// domain.ErrLockTimeout si la espera por el bloqueo supera el límite.
	LockAndRead(ctx context.Context, sku, warehouseID string) (*entity.StockRecord, error)

	// Save persiste el registro mutado e incrementa Version.
	Save(ctx context.Context, rec *entity.StockRecord) (*entity.StockRecord, error)

	// Create inserta un registro nuevo. Retorna domain.ErrDuplicate si ya
	// existe (sku, warehouse_id).
	Create(ctx context.Context, rec *entity.StockRecord) (*entity.StockRecord, error)

	// FindBySku lectura sin bloqueo (camino de consulta).
	// Retorna domain.ErrNotFound si no hay registro activo.
	FindBySku(ctx context.Context, sku, warehouseID string) (*entity.StockRecord, error)

	// ScanBelowThreshold registros activos con quantity <= threshold.
	// Sin orden garantizado.
	ScanBelowThreshold(ctx context.Context, warehouseID string, threshold int64) ([]*entity.StockRecord, error)
}
