package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Reservas-api/internal/application/dto"
	"github.com/jhoicas/Reservas-api/internal/application/stock"
	"github.com/jhoicas/Reservas-api/internal/domain"
	"github.com/jhoicas/Reservas-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de stock y reservas (protegido).
// Es un adaptador delgado: valida el cuerpo, delega en el motor o el camino
// de lectura y traduce los errores de dominio a códigos HTTP. La razón del
// fallo viaja al caller tal cual (stock insuficiente vs. no encontrado vs.
// timeout) para que pueda distinguir "reintenta" de "no existe".
type StockHandler struct {
	engine *stock.Engine
	reader *stock.Reader
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *stock.Engine, reader *stock.Reader) *StockHandler {
	return &StockHandler{engine: engine, reader: reader}
}

// Create godoc
// @Summary      Dar de alta stock de un SKU en la bodega activa
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "sku, name, quantity, minimum_stock_level, price"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.engine.CreateStock(c.Context(), stock.CreateStockInput{
		SKU:               in.SKU,
		WarehouseID:       warehouseID,
		Name:              in.Name,
		Description:       in.Description,
		Quantity:          in.Quantity,
		MinimumStockLevel: in.MinimumStockLevel,
		Price:             in.Price,
		Metadata:          in.Metadata,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockRecord(rec))
}

// GetBySku godoc
// @Summary      Consultar el stock de un SKU (read-through con caché)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{sku} [get]
func (h *StockHandler) GetBySku(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	rec, err := h.reader.GetBySku(c.Context(), c.Params("sku"), warehouseID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.FromStockRecord(rec))
}

// Reserve godoc
// @Summary      Reservar unidades contra el disponible del SKU
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string               true  "SKU"
// @Param        body  body  dto.QuantityRequest  true  "quantity > 0"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/{sku}/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return h.quantityOp(c, h.engine.Reserve)
}

// Release godoc
// @Summary      Liberar unidades reservadas del SKU
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string               true  "SKU"
// @Param        body  body  dto.QuantityRequest  true  "quantity > 0"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{sku}/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	return h.quantityOp(c, h.engine.Release)
}

// Consume godoc
// @Summary      Consumir unidades físicas del SKU (finaliza la reserva equivalente)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string               true  "SKU"
// @Param        body  body  dto.QuantityRequest  true  "quantity > 0"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{sku}/consume [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	return h.quantityOp(c, h.engine.Consume)
}

// Adjust godoc
// @Summary      Ajustar el total en mano del SKU (ADD | REMOVE)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string                  true  "SKU"
// @Param        body  body  dto.AdjustStockRequest  true  "delta > 0, direction ADD|REMOVE"
// @Success      200   {object}  dto.StockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{sku} [patch]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.engine.Adjust(c.Context(), c.Params("sku"), warehouseID, in.Delta, entity.AdjustDirection(in.Direction))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.FromStockRecord(rec))
}

// Deactivate godoc
// @Summary      Baja lógica del registro de stock (is_active = false)
// @Tags         stock
// @Security     Bearer
// @Param        sku  path  string  true  "SKU"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{sku} [delete]
func (h *StockHandler) Deactivate(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.engine.Deactivate(c.Context(), c.Params("sku"), warehouseID); err != nil {
		return writeDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStockAlerts godoc
// @Summary      Listar SKUs activos con quantity <= threshold
// @Description  Resultado cacheado 60s por threshold; la ventana de staleness
//
//	es aceptada y el orden no está garantizado.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  true  "umbral de alerta"
// @Success      200  {array}   dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts/low-stock [get]
func (h *StockHandler) LowStockAlerts(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	threshold := int64(c.QueryInt("threshold", -1))
	if threshold < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold debe ser un entero >= 0"})
	}
	recs, err := h.reader.ListBelowThreshold(c.Context(), warehouseID, threshold)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(recs),
		"alerts": dto.FromStockRecords(recs),
	})
}

// quantityOp factoriza reserve/release/consume: mismo cuerpo, misma firma.
func (h *StockHandler) quantityOp(c *fiber.Ctx, op func(ctx context.Context, sku, warehouseID string, qty int64) (*entity.StockRecord, error)) error {
	warehouseID := GetWarehouseID(c)
	if warehouseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := op(c.Context(), c.Params("sku"), warehouseID, in.Quantity)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.FromStockRecord(rec))
}

// writeDomainError traduce errores de dominio a códigos HTTP.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro de stock no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe stock para ese SKU en la bodega"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrOverRelease):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RELEASE", Message: "no se puede liberar más de lo reservado"})
	case errors.Is(err, domain.ErrLockTimeout):
		// Condición reintentable: el caller puede repetir la petición
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "no se pudo bloquear la fila a tiempo, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
