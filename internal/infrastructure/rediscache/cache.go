package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/pkg/config"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

// Ensure Store implements stock.Cache.
var _ stock.Cache = (*Store)(nil)

// Store backend de caché sobre Redis. Cada operación queda acotada por un
// timeout corto: la caché degrada (miss o error no fatal), nunca bloquea al
// caller contra un Redis caído. No es fuente de verdad para ninguna decisión
// que mute estado.
type Store struct {
	client    *redis.Client
	opTimeout time.Duration
	log       *logger.Logger
}

// NewClient crea y verifica el cliente Redis compartido (caché y pub/sub).
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewStore construye el backend de caché con un cliente existente.
// El caller conserva la propiedad del cliente y debe cerrarlo.
func NewStore(client *redis.Client, opTimeout time.Duration, log *logger.Logger) *Store {
	return &Store{client: client, opTimeout: opTimeout, log: log}
}

// Get lee la clave. Un miss, un timeout o cualquier fallo del backend se
// reportan de inmediato como (nil, false): el caller hace la lectura de
// respaldo contra el almacén durable.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("fallo al leer la caché, se trata como miss")
		}
		return nil, false
	}
	return raw, true
}

// Set escribe la clave con TTL. Best-effort: el fallo se envuelve en
// ErrCacheUnavailable y el caller decide loguear y continuar.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Del elimina la clave (invalidación). Borrar una clave inexistente no es
// error: la invalidación es idempotente.
func (s *Store) Del(ctx context.Context, key string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
