package handlers

import (
	"errors"

	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PlafondHandler handles the credit-line product catalog
type PlafondHandler struct {
	plafondService *services.PlafondService
}

// NewPlafondHandler creates a new plafond handler
func NewPlafondHandler(plafondService *services.PlafondService) *PlafondHandler {
	return &PlafondHandler{plafondService: plafondService}
}

// ListPublic returns the active catalog for the landing page
// @Summary List active plafonds
// @Tags Plafond
// @Produce json
// @Success 200 {object} response.Response
// @Router /public/plafonds [get]
func (h *PlafondHandler) ListPublic(c *fiber.Ctx) error {
	plafonds, err := h.plafondService.ListPublic(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load plafonds")
	}
	return response.Success(c, "Plafonds retrieved", plafonds)
}

// List returns all plafond products for the admin screen
// @Summary List all plafonds
// @Tags Plafond
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/plafonds [get]
func (h *PlafondHandler) List(c *fiber.Ctx) error {
	plafonds, err := h.plafondService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load plafonds")
	}
	return response.Success(c, "Plafonds retrieved", plafonds)
}

// Get returns one plafond product
// @Summary Get plafond
// @Tags Plafond
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/plafonds/{id} [get]
func (h *PlafondHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plafond ID")
	}

	plafond, err := h.plafondService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPlafondNotFound) {
			return response.NotFound(c, "Plafond not found")
		}
		return response.InternalServerError(c, "Failed to load plafond")
	}
	return response.Success(c, "Plafond retrieved", plafond)
}

// Create adds a plafond product
// @Summary Create plafond
// @Tags Plafond
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PlafondInput true "Plafond data"
// @Success 201 {object} response.Response
// @Router /admin/plafonds [post]
func (h *PlafondHandler) Create(c *fiber.Ctx) error {
	var req services.PlafondInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	plafond, err := h.plafondService.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPlafondNameTaken) {
			return response.Conflict(c, "Plafond name already exists")
		}
		return response.InternalServerError(c, "Failed to create plafond")
	}
	return response.Created(c, "Plafond created", plafond)
}

// Update modifies a plafond product
// @Summary Update plafond
// @Tags Plafond
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Param body body services.PlafondInput true "Plafond data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/plafonds/{id} [put]
func (h *PlafondHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plafond ID")
	}

	var req services.PlafondInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	plafond, err := h.plafondService.Update(c.Context(), uint(id), &req)
	if err != nil {
		if errors.Is(err, services.ErrPlafondNotFound) {
			return response.NotFound(c, "Plafond not found")
		}
		return response.InternalServerError(c, "Failed to update plafond")
	}
	return response.Success(c, "Plafond updated", plafond)
}

// Delete removes a plafond product
// @Summary Delete plafond
// @Tags Plafond
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plafond ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/plafonds/{id} [delete]
func (h *PlafondHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid plafond ID")
	}

	if err := h.plafondService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrPlafondNotFound) {
			return response.NotFound(c, "Plafond not found")
		}
		return response.InternalServerError(c, "Failed to delete plafond")
	}
	return response.Success(c, "Plafond deleted", nil)
}
