package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *stock.Engine
	Reader    *stock.Reader
	JWTSecret string
}

// Router registra las rutas de la API. Todas las rutas de stock van
// protegidas: el JWT aporta el contexto de bodega activa.
func Router(app *fiber.App, deps RouterDeps) {
	// Métricas Prometheus (público)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con warehouse_id)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine, deps.Reader)
	stockGroup.Post("/", stockHandler.Create)
	stockGroup.Get("/alerts/low-stock", stockHandler.LowStockAlerts)
	stockGroup.Get("/:sku", stockHandler.GetBySku)
	stockGroup.Patch("/:sku", stockHandler.Adjust)
	stockGroup.Delete("/:sku", stockHandler.Deactivate)
	stockGroup.Post("/:sku/reserve", stockHandler.Reserve)
	stockGroup.Post("/:sku/release", stockHandler.Release)
	stockGroup.Post("/:sku/consume", stockHandler.Consume)
}
