package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de existencias y movimientos (protegido).
type InventoryHandler struct {
	uc            *inventory.AdjustInventoryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.AdjustInventoryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// Adjust godoc
// @Summary      Ajuste manual de inventario
// @Description  Delta positivo registra una entrada (con lote y caducidad opcionales), negativo
//
//	un retiro. Un retiro que deja la existencia en cero elimina la fila. Acepta Idempotency-Key.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                      false  "llave de idempotencia"
// @Param        body             body    dto.AdjustInventoryRequest  true   "location_id, product_id, delta, reason"
// @Success      201   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := parseBody(c, &in, false); err != nil {
		return err
	}
	out, err := h.uc.AdjustFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SetAbsolute godoc
// @Summary      Fijar existencia
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        location_id  path  string                   true  "ubicación"
// @Param        product_id   path  string                   true  "insumo"
// @Param        body         body  dto.SetInventoryRequest  true  "quantity, reason"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{location_id}/{product_id} [put]
func (h *InventoryHandler) SetAbsolute(c *fiber.Ctx) error {
	var in dto.SetInventoryRequest
	if err := parseBody(c, &in, false); err != nil {
		return err
	}
	out, err := h.uc.SetAbsoluteFromRequest(c.UserContext(), GetUserID(c), c.Params("location_id"), c.Params("product_id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Existencias de una ubicación o de toda la red
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query     string  false  "hospital o almacén; vacío = todas"
// @Param        limit        query     int     false  "máximo 100"
// @Param        offset       query     int     false  "desplazamiento"
// @Success      200  {object}  dto.InventoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	lines, err := h.uc.ListByLocation(c.UserContext(), strings.TrimSpace(c.Query("location_id")), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	items := make([]dto.InventoryRecordResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, *inventory.ToInventoryRecordResponse(line))
	}
	return c.JSON(dto.InventoryListResponse{Items: items, Page: page.Response(len(items))})
}

// Movements godoc
// @Summary      Diario de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query     string  false  "ubicación"
// @Param        product_id   query     string  false  "insumo"
// @Param        reference    query     string  false  "folio o traspaso de origen"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	movs, err := h.uc.ListMovements(c.UserContext(), repository.MovementFilter{
		LocationID: strings.TrimSpace(c.Query("location_id")),
		ProductID:  strings.TrimSpace(c.Query("product_id")),
		Reference:  strings.TrimSpace(c.Query("reference")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, inventory.ToMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: page.Response(len(items))})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Insumos bajo su mínimo en la ubicación con la cantidad sugerida para llegar
//
//	al máximo, ordenados por déficit.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "hospital o almacén"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), strings.TrimSpace(c.Query("location_id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
