package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/usecase"
)

// CatalogHandler consulta de insumos y ubicaciones (solo lectura).
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListProducts godoc
// @Summary      Listar insumos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "máximo 100"
// @Param        offset  query     int  false  "desplazamiento"
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListProducts(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetProduct godoc
// @Summary      Obtener insumo
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del insumo"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.uc.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListLocations godoc
// @Summary      Listar hospitales y almacenes
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        kind  query     string  false  "hospital | central_storage"
// @Success      200   {object}  dto.LocationListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListLocations(c.UserContext(), strings.TrimSpace(c.Query("kind")), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetLocation godoc
// @Summary      Obtener ubicación
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	out, err := h.uc.GetLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
