package handlers

import (
	"errors"

	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TenorRateHandler handles the interest rate table
type TenorRateHandler struct {
	rateService *services.TenorRateService
}

// NewTenorRateHandler creates a new tenor rate handler
func NewTenorRateHandler(rateService *services.TenorRateService) *TenorRateHandler {
	return &TenorRateHandler{rateService: rateService}
}

// List returns the flat tenor rate table
// @Summary List tenor rates
// @Tags TenorRate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/tenor-rates [get]
func (h *TenorRateHandler) List(c *fiber.Ctx) error {
	rates, err := h.rateService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load tenor rates")
	}
	return response.Success(c, "Tenor rates retrieved", rates)
}

// Grouped returns tenor rates grouped under their plafonds
// @Summary List tenor rates grouped by plafond
// @Tags TenorRate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/tenor-rates/grouped [get]
func (h *TenorRateHandler) Grouped(c *fiber.Ctx) error {
	groups, err := h.rateService.ListGrouped(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load tenor rates")
	}
	return response.Success(c, "Tenor rates retrieved", groups)
}

// ByPlafond returns the rates configured for one plafond
// @Summary List tenor rates for a plafond
// @Tags TenorRate
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response
// @Router /admin/tenor-rates/plafond/{id} [get]
func (h *TenorRateHandler) ByPlafond(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plafond ID")
	}

	rates, svcErr := h.rateService.ListByPlafond(c.Context(), uint(id))
	if svcErr != nil {
		return response.InternalServerError(c, "Failed to load tenor rates")
	}
	return response.Success(c, "Tenor rates retrieved", rates)
}

// Create adds a tenor rate
// @Summary Create tenor rate
// @Tags TenorRate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.TenorRateInput true "Tenor rate data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/tenor-rates [post]
func (h *TenorRateHandler) Create(c *fiber.Ctx) error {
	var req services.TenorRateInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	rate, err := h.rateService.Create(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlafondNotFound):
			return response.NotFound(c, "Plafond not found")
		case errors.Is(err, services.ErrTenorRateExists):
			return response.Conflict(c, "Rate already configured for this plafond and tenor")
		default:
			return response.InternalServerError(c, "Failed to create tenor rate")
		}
	}
	return response.Created(c, "Tenor rate created", rate)
}

// Update modifies a tenor rate
// @Summary Update tenor rate
// @Tags TenorRate
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tenor rate ID"
// @Param body body services.TenorRateInput true "Tenor rate data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/tenor-rates/{id} [put]
func (h *TenorRateHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid tenor rate ID")
	}

	var req services.TenorRateInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	rate, err := h.rateService.Update(c.Context(), uint(id), &req)
	if err != nil {
		if errors.Is(err, services.ErrTenorRateNotFound) {
			return response.NotFound(c, "Tenor rate not found")
		}
		return response.InternalServerError(c, "Failed to update tenor rate")
	}
	return response.Success(c, "Tenor rate updated", rate)
}

// Delete removes a tenor rate
// @Summary Delete tenor rate
// @Tags TenorRate
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tenor rate ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/tenor-rates/{id} [delete]
func (h *TenorRateHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid tenor rate ID")
	}

	if err := h.rateService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrTenorRateNotFound) {
			return response.NotFound(c, "Tenor rate not found")
		}
		return response.InternalServerError(c, "Failed to delete tenor rate")
	}
	return response.Success(c, "Tenor rate deleted", nil)
}
