package handlers

import (
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin dashboard aggregate
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary returns counts and totals across applications and disbursements
// @Summary Dashboard summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboardService.Summary(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build summary")
	}
	return response.Success(c, "Summary retrieved", summary)
}
