package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/folio"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// FolioHandler maneja las peticiones HTTP del ciclo de vida de folios (protegido).
type FolioHandler struct {
	create     *folio.CreateFolioUseCase
	transition *folio.TransitionUseCase
	deliver    *folio.DeliverFolioUseCase
	query      *folio.QueryUseCase
}

// NewFolioHandler construye el handler.
func NewFolioHandler(create *folio.CreateFolioUseCase, transition *folio.TransitionUseCase, deliver *folio.DeliverFolioUseCase, query *folio.QueryUseCase) *FolioHandler {
	return &FolioHandler{create: create, transition: transition, deliver: deliver, query: query}
}

// Create godoc
// @Summary      Crear folio de insumos
// @Description  El auxiliar solicita insumos para un procedimiento. La respuesta incluye
//
//	los faltantes de existencia detectados, sin bloquear la creación.
//
// @Tags         folios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateFolioRequest  true  "líneas y datos del procedimiento"
// @Success      201   {object}  dto.FolioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/folios [post]
func (h *FolioHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFolioRequest
	if err := parseBody(c, &in, false); err != nil {
		return err
	}
	out, err := h.create.CreateFromRequest(c.UserContext(), GetActor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener folio
// @Tags         folios
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del folio"
// @Success      200  {object}  dto.FolioResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/folios/{id} [get]
func (h *FolioHandler) Get(c *fiber.Ctx) error {
	f, err := h.query.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := checkFolioScope(GetActor(c), f); err != nil {
		return err
	}
	return c.JSON(folio.ToFolioResponse(f))
}

// List godoc
// @Summary      Listar folios
// @Description  Los roles de hospital solo ven su hospital; el auxiliar solo sus propios folios.
// @Tags         folios
// @Security     Bearer
// @Produce      json
// @Param        status       query     string  false  "estados separados por coma"
// @Param        hospital_id  query     string  false  "filtrar por hospital (roles de almacén)"
// @Param        limit        query     int     false  "máximo 100"
// @Param        offset       query     int     false  "desplazamiento"
// @Success      200  {object}  dto.FolioListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/folios [get]
func (h *FolioHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	actor := GetActor(c)
	filter := repository.FolioFilter{
		HospitalID: strings.TrimSpace(c.Query("hospital_id")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if actor.HospitalID != "" {
		filter.HospitalID = actor.HospitalID
	}
	if actor.Role == entity.RoleAuxiliar {
		filter.RequesterID = actor.ID
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if !entity.ValidFolioStatus(s) {
				return validationError("estado de folio desconocido: " + s)
			}
			filter.Statuses = append(filter.Statuses, s)
		}
	}

	folios, err := h.query.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.FolioResponse, 0, len(folios))
	for _, f := range folios {
		items = append(items, *folio.ToFolioResponse(f))
	}
	return c.JSON(dto.FolioListResponse{Items: items, Page: page.Response(len(items))})
}

// History godoc
// @Summary      Bitácora del folio
// @Tags         folios
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del folio"
// @Success      200  {array}   dto.FolioHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/folios/{id}/history [get]
func (h *FolioHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	f, err := h.query.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := checkFolioScope(GetActor(c), f); err != nil {
		return err
	}
	entries, err := h.query.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(folio.ToHistoryResponse(entries))
}

// Transition godoc
// @Summary      Aprobar o rechazar folio
// @Tags         folios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ID del folio"
// @Param        body  body      dto.TransitionFolioRequest  true  "approve | reject (reason opcional)"
// @Success      200   {object}  dto.FolioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/folios/{id}/transition [post]
func (h *FolioHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionFolioRequest
	if err := parseBody(c, &in, false); err != nil {
		return err
	}
	out, err := h.transition.TransitionFromRequest(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deliver godoc
// @Summary      Entregar folio
// @Description  Descuenta del inventario del hospital lo disponible por línea. Si alguna línea
//
//	no se cubre completa el folio queda entregado_parcial. Acepta Idempotency-Key.
//
// @Tags         folios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path      string                   true   "ID del folio"
// @Param        Idempotency-Key  header    string                   false  "llave de idempotencia"
// @Param        body             body      dto.DeliverFolioRequest  false  "cantidades recibidas"
// @Success      200   {object}  dto.FolioResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/folios/{id}/deliver [post]
func (h *FolioHandler) Deliver(c *fiber.Ctx) error {
	var in dto.DeliverFolioRequest
	if err := parseBody(c, &in, true); err != nil {
		return err
	}
	out, err := h.deliver.DeliverFromRequest(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// checkFolioScope: un actor con hospital solo consulta folios de su hospital.
func checkFolioScope(actor entity.Actor, f *entity.FolioRequest) error {
	if actor.HospitalID != "" && actor.HospitalID != f.HospitalID {
		return domain.ErrForbidden
	}
	return nil
}
