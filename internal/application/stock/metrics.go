package stock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas Prometheus del motor de reservas, expuestas en /metrics.
var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Mutaciones de stock por operación y resultado",
	}, []string{"operation", "outcome"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_cache_lookups_total",
		Help: "Lecturas de caché por resultado (hit/miss)",
	}, []string{"outcome"})

	eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_published_total",
		Help: "Eventos de stock publicados por tipo y resultado",
	}, []string{"type", "outcome"})
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeHit      = "hit"
	outcomeMiss     = "miss"
	outcomeRejected = "rejected"
)
