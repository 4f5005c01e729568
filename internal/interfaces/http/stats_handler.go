package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Suministros-api/internal/application/analytics"
)

// StatsHandler tablero de gerencia.
type StatsHandler struct {
	uc *analytics.HospitalStatsUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(uc *analytics.HospitalStatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// HospitalStats godoc
// @Summary      Resumen por hospital
// @Description  Folios por estado, tasa de entrega e insumos en o bajo el mínimo de cada hospital.
// @Tags         stats
// @Security     Bearer
// @Produce      json
// @Param        hospital_id  query     string  false  "un solo hospital"
// @Success      200  {object}  dto.HospitalStatsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stats/hospitals [get]
func (h *StatsHandler) HospitalStats(c *fiber.Ctx) error {
	out, err := h.uc.GetHospitalStats(c.UserContext(), strings.TrimSpace(c.Query("hospital_id")))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
