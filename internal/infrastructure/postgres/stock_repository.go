package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, sku, warehouse_id, name, description, quantity,
		reserved_quantity, minimum_stock_level, price, metadata, is_active,
		version, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx). Las mutaciones solo tienen sentido sobre una tx (LockAndRead
// mantiene el bloqueo de fila hasta Commit/Rollback); las lecturas funcionan
// igual sobre el pool.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockAndRead obtiene el registro activo y bloquea la fila (SELECT FOR UPDATE).
// El bloqueo es por fila, no por tabla: SKUs distintos avanzan en paralelo.
func (r *StockRepo) LockAndRead(ctx context.Context, sku, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE sku = $1 AND warehouse_id = $2 AND is_active
		FOR UPDATE`
	rec, err := r.scanOne(r.q.QueryRow(ctx, query, sku, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("lock and read stock: %w", err)
	}
	return rec, nil
}

// Save persiste el registro mutado e incrementa version (testigo optimista
// para auditoría; el bloqueo de fila ya serializa las escrituras).
func (r *StockRepo) Save(ctx context.Context, rec *entity.StockRecord) (*entity.StockRecord, error) {
	query := `
		UPDATE stock_records
		SET name = $2, description = $3, quantity = $4, reserved_quantity = $5,
		    minimum_stock_level = $6, price = $7, metadata = $8, is_active = $9,
		    version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query,
		rec.ID, rec.Name, rec.Description, rec.Quantity, rec.ReservedQuantity,
		rec.MinimumStockLevel, rec.Price, rec.Metadata, rec.IsActive,
	).Scan(&rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("save stock: %w", err)
	}
	return rec, nil
}

// Create inserta el registro. (sku, warehouse_id) es único: un duplicado
// retorna domain.ErrDuplicate.
func (r *StockRepo) Create(ctx context.Context, rec *entity.StockRecord) (*entity.StockRecord, error) {
	query := `
		INSERT INTO stock_records
			(id, sku, warehouse_id, name, description, quantity, reserved_quantity,
			 minimum_stock_level, price, metadata, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.SKU, rec.WarehouseID, rec.Name, rec.Description,
		rec.Quantity, rec.ReservedQuantity, rec.MinimumStockLevel,
		rec.Price, rec.Metadata, rec.IsActive, rec.Version,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("create stock: %w", err)
	}
	return rec, nil
}

// FindBySku lectura sin bloqueo del registro activo (camino de consulta).
func (r *StockRepo) FindBySku(ctx context.Context, sku, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE sku = $1 AND warehouse_id = $2 AND is_active`
	rec, err := r.scanOne(r.q.QueryRow(ctx, query, sku, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find stock by sku: %w", err)
	}
	return rec, nil
}

// ScanBelowThreshold registros activos con quantity <= threshold.
// warehouseID vacío consulta todas las bodegas. Sin ORDER BY: el orden del
// resultado no está garantizado a los callers.
func (r *StockRepo) ScanBelowThreshold(ctx context.Context, warehouseID string, threshold int64) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE is_active AND quantity <= $1`
	args := []any{threshold}
	if warehouseID != "" {
		query += ` AND warehouse_id = $2`
		args = append(args, warehouseID)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan below threshold: %w", err)
	}
	defer rows.Close()

	recs := make([]*entity.StockRecord, 0)
	for rows.Next() {
		rec, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan below threshold: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan below threshold: %w", err)
	}
	return recs, nil
}

func (r *StockRepo) scanOne(row pgx.Row) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := row.Scan(
		&rec.ID, &rec.SKU, &rec.WarehouseID, &rec.Name, &rec.Description,
		&rec.Quantity, &rec.ReservedQuantity, &rec.MinimumStockLevel,
		&rec.Price, &rec.Metadata, &rec.IsActive, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
