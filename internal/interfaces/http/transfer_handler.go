package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/transfer"
)

// TransferHandler traspasos entre almacén central y hospitales (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traspaso
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransferRequest  true  "origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := parseBody(c, &in, false); err != nil {
		return err
	}
	out, err := h.uc.CreateFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener traspaso
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traspaso"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	order, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(transfer.ToTransferResponse(order))
}

// List godoc
// @Summary      Listar traspasos
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query     string  false  "pending | in_transit | completed"
// @Success      200     {object}  dto.TransferListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	orders, err := h.uc.List(c.UserContext(), strings.TrimSpace(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	items := make([]dto.TransferResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, *transfer.ToTransferResponse(o))
	}
	return c.JSON(dto.TransferListResponse{Items: items, Page: page.Response(len(items))})
}

// Dispatch godoc
// @Summary      Marcar traspaso en tránsito
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traspaso"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/dispatch [post]
func (h *TransferHandler) Dispatch(c *fiber.Ctx) error {
	order, err := h.uc.MarkInTransit(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(transfer.ToTransferResponse(order))
}

// Complete godoc
// @Summary      Completar traspaso
// @Description  Mueve todas las líneas del origen al destino en una transacción; un faltante
//
//	revierte el traspaso completo. Acepta Idempotency-Key.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del traspaso"
// @Param        Idempotency-Key  header  string  false  "llave de idempotencia"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	order, err := h.uc.Complete(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(transfer.ToTransferResponse(order))
}
