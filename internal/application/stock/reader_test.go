package stock_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// fakeReadRepo repositorio de solo lectura con contador de accesos al almacén.
type fakeReadRepo struct {
	mu    sync.Mutex
	rows  map[string]*entity.StockRecord
	reads int
	scans int
}

func newFakeReadRepo(recs ...*entity.StockRecord) *fakeReadRepo {
	r := &fakeReadRepo{rows: make(map[string]*entity.StockRecord)}
	for _, rec := range recs {
		cp := *rec
		r.rows[rowKey(rec.WarehouseID, rec.SKU)] = &cp
	}
	return r
}

func (r *fakeReadRepo) LockAndRead(context.Context, string, string) (*entity.StockRecord, error) {
	panic("camino de lectura: no debe bloquear filas")
}

func (r *fakeReadRepo) Save(context.Context, *entity.StockRecord) (*entity.StockRecord, error) {
	panic("camino de lectura: no debe escribir")
}

func (r *fakeReadRepo) Create(context.Context, *entity.StockRecord) (*entity.StockRecord, error) {
	panic("camino de lectura: no debe escribir")
}

func (r *fakeReadRepo) FindBySku(_ context.Context, sku, warehouseID string) (*entity.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	rec, ok := r.rows[rowKey(warehouseID, sku)]
	if !ok || !rec.IsActive {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeReadRepo) ScanBelowThreshold(_ context.Context, warehouseID string, threshold int64) ([]*entity.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
	var out []*entity.StockRecord
	for _, rec := range r.rows {
		if !rec.IsActive || rec.Quantity > threshold {
			continue
		}
		if warehouseID != "" && rec.WarehouseID != warehouseID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeReadRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *fakeReadRepo) scanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scans
}

func newReaderFixture(recs ...*entity.StockRecord) (*stock.Reader, *fakeReadRepo, *memCache) {
	repo := newFakeReadRepo(recs...)
	cache := newMemCache()
	reader := stock.NewReader(repo, cache, logger.Nop(), 300*time.Second, 60*time.Second)
	return reader, repo, cache
}

// ──────────────────────────────────────────────────────────────────────────────
// GetBySku
// ──────────────────────────────────────────────────────────────────────────────

func TestGetBySku_MissLeeElAlmacenYRepuebla(t *testing.T) {
	reader, repo, cache := newReaderFixture(seeded(10, 3))

	rec, err := reader.GetBySku(context.Background(), "SKU-1", "wh-1")

	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, 1, repo.readCount())

	// El miss repobló la clave puntual
	raw, ok := cache.Get(context.Background(), stock.PointKey("wh-1", "SKU-1"))
	require.True(t, ok)
	var snapshot entity.StockRecord
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, "SKU-1", snapshot.SKU)
}

func TestGetBySku_HitNoTocaElAlmacen(t *testing.T) {
	reader, repo, _ := newReaderFixture(seeded(10, 3))

	_, err := reader.GetBySku(context.Background(), "SKU-1", "wh-1")
	require.NoError(t, err)

	rec, err := reader.GetBySku(context.Background(), "SKU-1", "wh-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, 1, repo.readCount(), "la segunda lectura sale de la caché")
}

// Tras la invalidación de la clave puntual, la siguiente lectura repuebla
// perezosamente desde el almacén (nunca write-through desde la mutación).
func TestGetBySku_InvalidacionFuerzaRelectura(t *testing.T) {
	reader, repo, cache := newReaderFixture(seeded(10, 3))

	_, err := reader.GetBySku(context.Background(), "SKU-1", "wh-1")
	require.NoError(t, err)
	require.NoError(t, cache.Del(context.Background(), stock.PointKey("wh-1", "SKU-1")))

	_, err = reader.GetBySku(context.Background(), "SKU-1", "wh-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.readCount())
}

func TestGetBySku_SnapshotCorruptoSeTrataComoMiss(t *testing.T) {
	reader, repo, cache := newReaderFixture(seeded(10, 3))
	key := stock.PointKey("wh-1", "SKU-1")
	require.NoError(t, cache.Set(context.Background(), key, []byte("{esto no es json"), time.Minute))

	rec, err := reader.GetBySku(context.Background(), "SKU-1", "wh-1")

	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, 1, repo.readCount(), "el snapshot corrupto se descarta y se va al almacén")

	// Y la entrada quedó repoblada con un snapshot legible
	raw, ok := cache.Get(context.Background(), key)
	require.True(t, ok)
	var snapshot entity.StockRecord
	require.NoError(t, json.Unmarshal(raw, &snapshot))
}

func TestGetBySku_NoEncontrado(t *testing.T) {
	reader, _, cache := newReaderFixture()

	_, err := reader.GetBySku(context.Background(), "NO-EXISTE", "wh-1")

	require.ErrorIs(t, err, domain.ErrNotFound)
	_, ok := cache.Get(context.Background(), stock.PointKey("wh-1", "NO-EXISTE"))
	assert.False(t, ok, "los no-encontrados no se cachean")
}

func TestGetBySku_ParametrosVacios(t *testing.T) {
	reader, _, _ := newReaderFixture()

	_, err := reader.GetBySku(context.Background(), "", "wh-1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reader.GetBySku(context.Background(), "SKU-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListBelowThreshold
// ──────────────────────────────────────────────────────────────────────────────

func TestListBelowThreshold_FiltraPorUmbral(t *testing.T) {
	low := seeded(2, 0)
	high := seeded(100, 0)
	high.SKU = "SKU-2"
	reader, repo, _ := newReaderFixture(low, high)

	recs, err := reader.ListBelowThreshold(context.Background(), "wh-1", 5)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "SKU-1", recs[0].SKU)
	assert.Equal(t, 1, repo.scanCount())
}

func TestListBelowThreshold_ResultadoCacheado(t *testing.T) {
	reader, repo, _ := newReaderFixture(seeded(2, 0))

	_, err := reader.ListBelowThreshold(context.Background(), "wh-1", 5)
	require.NoError(t, err)
	_, err = reader.ListBelowThreshold(context.Background(), "wh-1", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.scanCount(), "el segundo barrido sale de la caché")
}

// Umbrales distintos (o bodegas distintas) usan claves distintas.
func TestListBelowThreshold_ClavesIndependientesPorUmbral(t *testing.T) {
	reader, repo, _ := newReaderFixture(seeded(2, 0))

	_, err := reader.ListBelowThreshold(context.Background(), "wh-1", 5)
	require.NoError(t, err)
	_, err = reader.ListBelowThreshold(context.Background(), "wh-1", 10)
	require.NoError(t, err)
	_, err = reader.ListBelowThreshold(context.Background(), "", 5)
	require.NoError(t, err)

	assert.Equal(t, 3, repo.scanCount())
}

func TestListBelowThreshold_UmbralNegativoEsInvalido(t *testing.T) {
	reader, _, _ := newReaderFixture()

	_, err := reader.ListBelowThreshold(context.Background(), "wh-1", -1)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListBelowThreshold_ListaVaciaTambienSeCachea(t *testing.T) {
	reader, repo, _ := newReaderFixture(seeded(100, 0))

	recs, err := reader.ListBelowThreshold(context.Background(), "wh-1", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = reader.ListBelowThreshold(context.Background(), "wh-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.scanCount(), "la lista vacía también es un snapshot válido")
}
