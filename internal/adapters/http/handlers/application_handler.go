package handlers

import (
	"errors"

	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles customer-facing application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// Apply submits a new plafond application
// @Summary Apply for a plafond
// @Tags Application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ApplyInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /customer/plafond-applications [post]
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	var req services.ApplyInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	app, err := h.appService.Apply(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlafondNotFound):
			return response.NotFound(c, "Plafond not found")
		case errors.Is(err, services.ErrPlafondInactive):
			return response.BadRequest(c, "Plafond is not available")
		case errors.Is(err, services.ErrOpenApplication):
			return response.Conflict(c, "You already have an application in progress")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, "Application submitted", app)
}

// MyApplications lists the caller's own applications
// @Summary List own applications
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /customer/plafond-applications/my [get]
func (h *ApplicationHandler) MyApplications(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	apps, err := h.appService.ListByUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load applications")
	}
	return response.Success(c, "Applications retrieved", apps)
}

// Get returns one of the caller's applications
// @Summary Get own application
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customer/plafond-applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.appService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to load application")
	}

	// Customers see only their own applications
	if app.UserID != userID {
		return response.NotFound(c, "Application not found")
	}

	return response.Success(c, "Application retrieved", app)
}

// ListAll returns every application regardless of status
// @Summary List all applications
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/plafond-applications [get]
func (h *ApplicationHandler) ListAll(c *fiber.Ctx) error {
	apps, err := h.appService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load applications")
	}
	return response.Success(c, "Applications retrieved", apps)
}

// ApprovedCustomers lists applications holding an approved credit line
// @Summary List approved customers
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/customers/approved [get]
func (h *ApplicationHandler) ApprovedCustomers(c *fiber.Ctx) error {
	apps, err := h.appService.ListByStatus(c.Context(), domain.StatusApproved)
	if err != nil {
		return response.InternalServerError(c, "Failed to load approved customers")
	}
	return response.Success(c, "Approved customers retrieved", apps)
}
