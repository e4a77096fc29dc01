package handlers

import (
	"errors"

	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DisbursementHandler handles customer disbursement requests and the back
// office processing desk.
type DisbursementHandler struct {
	disbService *services.DisbursementService
}

// NewDisbursementHandler creates a new disbursement handler
func NewDisbursementHandler(disbService *services.DisbursementService) *DisbursementHandler {
	return &DisbursementHandler{disbService: disbService}
}

func backOfficeActor(c *fiber.Ctx) services.Actor {
	userID, username, _ := middleware.ActorFromContext(c)
	return services.Actor{ID: userID, Username: username, Role: domain.RoleBackOffice}
}

// Create submits a fund-release request against an approved application
// @Summary Request a disbursement
// @Tags Disbursement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDisbursementInput true "Disbursement request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /customer/disbursements [post]
func (h *DisbursementHandler) Create(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	var req services.CreateDisbursementInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	disb, err := h.disbService.Create(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound),
			errors.Is(err, services.ErrNotApplicationOwner):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrApplicationNotApproved):
			return response.BadRequest(c, "Application is not approved")
		case errors.Is(err, domain.ErrRateNotConfigured):
			return response.UnprocessableEntity(c, "No interest rate configured for this tenor")
		case errors.Is(err, domain.ErrInsufficientLimit):
			return response.UnprocessableEntity(c, "Amount exceeds the remaining limit")
		default:
			return response.InternalServerError(c, "Failed to request disbursement")
		}
	}

	return response.Created(c, "Disbursement requested", disb)
}

// MyDisbursements lists the caller's own disbursements
// @Summary List own disbursements
// @Tags Disbursement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /customer/disbursements/my [get]
func (h *DisbursementHandler) MyDisbursements(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	list, err := h.disbService.ListByUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load disbursements")
	}
	return response.Success(c, "Disbursements retrieved", list)
}

// Pending lists disbursements waiting for back office processing
// @Summary List pending disbursements
// @Tags Disbursement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /back-office/disbursements/pending [get]
func (h *DisbursementHandler) Pending(c *fiber.Ctx) error {
	list, err := h.disbService.ListByStatus(c.Context(), domain.DisbursementPending)
	if err != nil {
		return response.InternalServerError(c, "Failed to load disbursements")
	}
	return response.Success(c, "Pending disbursements retrieved", list)
}

// List returns all disbursements for admin oversight
// @Summary List all disbursements
// @Tags Disbursement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /disbursements [get]
func (h *DisbursementHandler) List(c *fiber.Ctx) error {
	list, err := h.disbService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load disbursements")
	}
	return response.Success(c, "Disbursements retrieved", list)
}

// Process marks a pending disbursement as released. The note rides in the
// query string so the portal can fire the action from a confirm dialog.
// @Summary Process disbursement
// @Tags Disbursement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disbursement ID"
// @Param note query string false "Processing note"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /back-office/disbursements/{id}/process [post]
func (h *DisbursementHandler) Process(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid disbursement ID")
	}

	input := &services.ProcessInput{Note: c.Query("note")}
	disb, svcErr := h.disbService.Process(c.Context(), uint(id), backOfficeActor(c), input)
	if svcErr != nil {
		return disbursementTransitionError(c, svcErr)
	}
	return response.Success(c, "Disbursement processed", disb)
}

// Cancel declines a pending disbursement and releases the reserved limit
// @Summary Cancel disbursement
// @Tags Disbursement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disbursement ID"
// @Param reason query string true "Cancellation reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /back-office/disbursements/{id}/cancel [post]
func (h *DisbursementHandler) Cancel(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid disbursement ID")
	}

	input := &services.CancelInput{Reason: c.Query("reason")}
	disb, svcErr := h.disbService.Cancel(c.Context(), uint(id), backOfficeActor(c), input)
	if svcErr != nil {
		return disbursementTransitionError(c, svcErr)
	}
	return response.Success(c, "Disbursement cancelled", disb)
}

func disbursementTransitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDisbursementNotFound):
		return response.NotFound(c, "Disbursement not found")
	case errors.Is(err, domain.ErrStaleState):
		return response.Conflict(c, "Disbursement was already processed")
	case errors.Is(err, domain.ErrReasonRequired):
		return response.BadRequest(c, "A cancellation reason is required")
	default:
		return response.InternalServerError(c, "Failed to process disbursement")
	}
}
