package stock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/internal/domain/repository"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// Reader camino de lectura con caché read-through. En un miss el caller de
// la caché (este Reader) hace la lectura de respaldo contra el almacén y
// repuebla con Set best-effort. Las entradas son el snapshot JSON del
// StockRecord; un snapshot corrupto se trata como miss.
//
// La clave puntual usa PointTTL (300s por defecto) y la lista de low-stock
// AggregateTTL (60s); la segunda solo se invalida por expiración.
type Reader struct {
	repo         repository.StockRepository
	cache        Cache
	log          *logger.Logger
	pointTTL     time.Duration
	aggregateTTL time.Duration
}

// NewReader construye el camino de lectura. repo debe estar atado al pool
// (lecturas sin bloqueo).
func NewReader(repo repository.StockRepository, cache Cache, log *logger.Logger, pointTTL, aggregateTTL time.Duration) *Reader {
	return &Reader{
		repo:         repo,
		cache:        cache,
		log:          log,
		pointTTL:     pointTTL,
		aggregateTTL: aggregateTTL,
	}
}

// GetBySku lectura puntual read-through del registro activo.
// Retorna domain.ErrNotFound si no existe.
func (r *Reader) GetBySku(ctx context.Context, sku, warehouseID string) (*entity.StockRecord, error) {
	if sku == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	key := PointKey(warehouseID, sku)
	if raw, ok := r.cache.Get(ctx, key); ok {
		var rec entity.StockRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			cacheLookupsTotal.WithLabelValues(outcomeHit).Inc()
			return &rec, nil
		}
		// Snapshot corrupto: se descarta y se sigue al almacén
		r.log.Warn().Str("key", key).Msg("snapshot de caché ilegible, se descarta")
		if err := r.cache.Del(ctx, key); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("no se pudo descartar el snapshot corrupto")
		}
	}
	cacheLookupsTotal.WithLabelValues(outcomeMiss).Inc()

	rec, err := r.repo.FindBySku(ctx, sku, warehouseID)
	if err != nil {
		return nil, err
	}
	r.setBestEffort(ctx, key, rec, r.pointTTL)
	return rec, nil
}

// ListBelowThreshold registros activos con quantity <= threshold, para las
// alertas de stock bajo. warehouseID vacío consulta todas las bodegas. El
// orden del resultado no está garantizado.
func (r *Reader) ListBelowThreshold(ctx context.Context, warehouseID string, threshold int64) ([]*entity.StockRecord, error) {
	if threshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	key := lowStockKey(warehouseID, threshold)
	if raw, ok := r.cache.Get(ctx, key); ok {
		var recs []*entity.StockRecord
		if err := json.Unmarshal(raw, &recs); err == nil {
			cacheLookupsTotal.WithLabelValues(outcomeHit).Inc()
			return recs, nil
		}
		r.log.Warn().Str("key", key).Msg("snapshot de caché ilegible, se descarta")
	}
	cacheLookupsTotal.WithLabelValues(outcomeMiss).Inc()

	recs, err := r.repo.ScanBelowThreshold(ctx, warehouseID, threshold)
	if err != nil {
		return nil, err
	}
	r.setBestEffort(ctx, key, recs, r.aggregateTTL)
	return recs, nil
}

// setBestEffort serializa y escribe en caché; un fallo solo se loguea.
func (r *Reader) setBestEffort(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("no se pudo serializar el snapshot")
		return
	}
	if err := r.cache.Set(ctx, key, raw, ttl); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("no se pudo escribir la caché")
	}
}
