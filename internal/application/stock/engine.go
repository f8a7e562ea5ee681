package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/internal/domain/repository"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// Engine orquesta los ciclos bloquear-leer-validar-mutar-confirmar sobre el
// almacén durable. Cada operación corre en una sola transacción: adquiere el
// bloqueo exclusivo de la fila del SKU, relee el estado bajo el bloqueo,
// aplica la operación del dominio y persiste. SKUs distintos avanzan en
// paralelo; las peticiones sobre el mismo SKU se serializan en el orden en
// que el almacén concede el bloqueo.
//
// Tras un Commit exitoso, y antes de devolver el control al caller, el motor
// invalida la clave puntual de caché y publica el evento de transición
// (al-menos-una-vez). Ningún fallo de caché o notificación aborta una
// mutación ya confirmada: se registra en el log y se continúa.
type Engine struct {
	txRunner TxRunner
	cache    Cache
	notifier Notifier
	log      *logger.Logger
}

// NewEngine construye el motor de reservas.
func NewEngine(txRunner TxRunner, cache Cache, notifier Notifier, log *logger.Logger) *Engine {
	return &Engine{
		txRunner: txRunner,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

// CreateStockInput entrada para dar de alta stock de un SKU en una bodega.
type CreateStockInput struct {
	SKU               string
	WarehouseID       string
	Name              string
	Description       string
	Quantity          int64
	MinimumStockLevel int64
	Price             decimal.Decimal
	Metadata          map[string]any
}

// CreateStock da de alta el registro de stock (ReservedQuantity arranca en
// cero). Retorna domain.ErrDuplicate si ya existe (sku, bodega).
func (e *Engine) CreateStock(ctx context.Context, input CreateStockInput) (*entity.StockRecord, error) {
	if input.SKU == "" || input.WarehouseID == "" || input.Quantity < 0 || input.MinimumStockLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	rec := &entity.StockRecord{
		ID:                uuid.New().String(),
		SKU:               input.SKU,
		WarehouseID:       input.WarehouseID,
		Name:              input.Name,
		Description:       input.Description,
		Quantity:          input.Quantity,
		ReservedQuantity:  0,
		MinimumStockLevel: input.MinimumStockLevel,
		Price:             input.Price,
		Metadata:          input.Metadata,
		IsActive:          true,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var created *entity.StockRecord
	err := e.txRunner.Run(ctx, func(repo repository.StockRepository) error {
		var err error
		created, err = repo.Create(ctx, rec)
		return err
	})
	if err != nil {
		mutationsTotal.WithLabelValues("create", outcomeError).Inc()
		return nil, err
	}
	mutationsTotal.WithLabelValues("create", outcomeOK).Inc()

	e.afterCommit(ctx, created, entity.StockCreated, created.Quantity)
	return created, nil
}

// Reserve retiene qty unidades del SKU contra el disponible.
// Falla con domain.ErrNotFound si no hay registro activo y con
// domain.ErrInsufficientStock si el disponible no alcanza.
func (e *Engine) Reserve(ctx context.Context, sku, warehouseID string, qty int64) (*entity.StockRecord, error) {
	rec, err := e.mutate(ctx, "reserve", sku, warehouseID, func(r *entity.StockRecord) error {
		return r.Reserve(qty)
	})
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, rec, entity.StockReserved, qty)
	return rec, nil
}

// Release devuelve qty unidades reservadas al disponible.
// Falla con domain.ErrOverRelease si qty supera lo reservado.
func (e *Engine) Release(ctx context.Context, sku, warehouseID string, qty int64) (*entity.StockRecord, error) {
	rec, err := e.mutate(ctx, "release", sku, warehouseID, func(r *entity.StockRecord) error {
		return r.Release(qty)
	})
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, rec, entity.StockReleased, -qty)
	return rec, nil
}

// Consume descuenta qty unidades físicas y limpia la reserva equivalente
// (consumir finaliza la reserva, ver entity.StockRecord.Consume).
func (e *Engine) Consume(ctx context.Context, sku, warehouseID string, qty int64) (*entity.StockRecord, error) {
	rec, err := e.mutate(ctx, "consume", sku, warehouseID, func(r *entity.StockRecord) error {
		return r.Consume(qty)
	})
	if err != nil {
		return nil, err
	}
	e.afterCommit(ctx, rec, entity.StockConsumed, -qty)
	return rec, nil
}

// Adjust ajusta el total en mano (ADD suma, REMOVE resta validando contra el
// disponible).
func (e *Engine) Adjust(ctx context.Context, sku, warehouseID string, delta int64, direction entity.AdjustDirection) (*entity.StockRecord, error) {
	rec, err := e.mutate(ctx, "adjust", sku, warehouseID, func(r *entity.StockRecord) error {
		return r.Adjust(delta, direction)
	})
	if err != nil {
		return nil, err
	}
	signed := delta
	if direction == entity.AdjustRemove {
		signed = -delta
	}
	e.afterCommit(ctx, rec, entity.StockAdjusted, signed)
	return rec, nil
}

// Deactivate baja lógica del registro (is_active = false), por el mismo
// camino transaccional que cualquier otra mutación. No publica evento.
func (e *Engine) Deactivate(ctx context.Context, sku, warehouseID string) error {
	err := e.txRunner.Run(ctx, func(repo repository.StockRepository) error {
		rec, err := repo.LockAndRead(ctx, sku, warehouseID)
		if err != nil {
			return err
		}
		rec.IsActive = false
		_, err = repo.Save(ctx, rec)
		return err
	})
	if err != nil {
		return err
	}
	key := PointKey(warehouseID, sku)
	if delErr := e.cache.Del(ctx, key); delErr != nil {
		e.log.Warn().Err(delErr).Str("key", key).Msg("no se pudo invalidar la caché tras desactivar")
	}
	return nil
}

// mutate ciclo común: transacción, bloqueo de fila, releer, aplicar, persistir.
// Si apply falla, la transacción se revierte y el registro queda intacto.
func (e *Engine) mutate(ctx context.Context, op, sku, warehouseID string, apply func(*entity.StockRecord) error) (*entity.StockRecord, error) {
	if sku == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.StockRecord
	err := e.txRunner.Run(ctx, func(repo repository.StockRepository) error {
		rec, err := repo.LockAndRead(ctx, sku, warehouseID)
		if err != nil {
			return err
		}
		if err := apply(rec); err != nil {
			return err
		}
		updated, err = repo.Save(ctx, rec)
		return err
	})
	if err != nil {
		if isBusinessError(err) {
			mutationsTotal.WithLabelValues(op, outcomeRejected).Inc()
		} else {
			mutationsTotal.WithLabelValues(op, outcomeError).Inc()
		}
		return nil, err
	}
	mutationsTotal.WithLabelValues(op, outcomeOK).Inc()
	return updated, nil
}

// afterCommit efectos secundarios posteriores al Commit: invalidación
// síncrona de la clave puntual (acota la ventana de staleness a lo sumo a un
// lector concurrente en vuelo) y publicación del evento.
func (e *Engine) afterCommit(ctx context.Context, rec *entity.StockRecord, evType entity.StockEventType, delta int64) {
	key := PointKey(rec.WarehouseID, rec.SKU)
	if err := e.cache.Del(ctx, key); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("no se pudo invalidar la caché")
	}

	ev := entity.StockEvent{
		Type:          evType,
		SKU:           rec.SKU,
		WarehouseID:   rec.WarehouseID,
		QuantityDelta: delta,
		Timestamp:     time.Now().UTC(),
	}
	if err := e.notifier.Publish(ctx, ev); err != nil {
		eventsPublishedTotal.WithLabelValues(string(evType), outcomeError).Inc()
		e.log.Warn().Err(err).
			Str("sku", rec.SKU).
			Str("warehouse_id", rec.WarehouseID).
			Str("type", string(evType)).
			Msg("no se pudo publicar el evento de stock")
		return
	}
	eventsPublishedTotal.WithLabelValues(string(evType), outcomeOK).Inc()
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrOverRelease) ||
		errors.Is(err, domain.ErrInvalidInput)
}
