package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/infrastructure/notify"
	"github.com/jhoicas/Reservas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reservas-api/internal/infrastructure/rediscache"
	httpRouter "github.com/jhoicas/Reservas-api/internal/interfaces/http"
	"github.com/jhoicas/Reservas-api/pkg/config"
	"github.com/jhoicas/Reservas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient, err := rediscache.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	cache := rediscache.NewStore(redisClient, cfg.Cache.OpTimeout, log)
	notifier := notify.NewRedisNotifier(redisClient, notify.DefaultChannel, log)

	txRunner := postgres.NewTxRunner(pool, cfg.Lock.WaitTimeout)
	readRepo := postgres.NewStockRepository(pool)

	engine := stock.NewEngine(txRunner, cache, notifier, log)
	reader := stock.NewReader(readRepo, cache, log, cfg.Cache.PointTTL, cfg.Cache.AggregateTTL)

	// Suscripción de invalidación entre instancias: las mutaciones de otros
	// procesos también tumban la copia en caché de este (teardown en Close).
	subCtx, subCancel := context.WithCancel(ctx)
	defer subCancel()
	go func() {
		err := notifier.Subscribe(subCtx, notify.NewCacheInvalidationHandler(cache, log))
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("suscripción de eventos de stock finalizada")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reservas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		Reader:    reader,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := notifier.Close(); err != nil {
		log.Error().Err(err).Msg("cierre del notificador")
	}

	log.Info().Msg("aplicación detenida")
}
