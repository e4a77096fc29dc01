package handlers

import (
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler exposes the append-only transition log
type HistoryHandler struct {
	historyService *services.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyService *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List returns recent history entries, newest first
// @Summary List plafond histories
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {object} response.Response
// @Router /plafond-histories [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	entries, err := h.historyService.List(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load histories")
	}
	return response.Success(c, "Histories retrieved", entries)
}

// ByApplication returns the trail of one application
// @Summary Get application history
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Router /plafond-histories/applications/{id} [get]
func (h *HistoryHandler) ByApplication(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	entries, err := h.historyService.ListByApplication(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to load history")
	}
	return response.Success(c, "History retrieved", entries)
}

// ByDisbursement returns the trail of one disbursement
// @Summary Get disbursement history
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disbursement ID"
// @Success 200 {object} response.Response
// @Router /plafond-histories/disbursements/{id} [get]
func (h *HistoryHandler) ByDisbursement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid disbursement ID")
	}

	entries, err := h.historyService.ListByDisbursement(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to load history")
	}
	return response.Success(c, "History retrieved", entries)
}
