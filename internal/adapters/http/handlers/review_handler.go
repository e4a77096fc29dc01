package handlers

import (
	"errors"

	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles the marketing review desk
type ReviewHandler struct {
	appService *services.ApplicationService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(appService *services.ApplicationService) *ReviewHandler {
	return &ReviewHandler{appService: appService}
}

func reviewActor(c *fiber.Ctx) services.Actor {
	userID, username, _ := middleware.ActorFromContext(c)
	return services.Actor{ID: userID, Username: username, Role: domain.RoleMarketing}
}

// Pending lists applications waiting for review, oldest first
// @Summary List applications pending review
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /marketing/plafond-applications/pending [get]
func (h *ReviewHandler) Pending(c *fiber.Ctx) error {
	apps, err := h.appService.ListByStatus(c.Context(), domain.StatusPendingReview)
	if err != nil {
		return response.InternalServerError(c, "Failed to load applications")
	}
	return response.Success(c, "Pending applications retrieved", apps)
}

// ReviewDecision is the review desk's wire payload. A single endpoint carries
// both outcomes; approved=false rejects the application.
type ReviewDecision struct {
	ApplicationID uint   `json:"applicationId" validate:"required"`
	Approved      *bool  `json:"approved" validate:"required"`
	Note          string `json:"note"`
}

// Review forwards an application to the branch manager, or rejects it
// @Summary Review application
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReviewDecision true "Review decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /marketing/plafond-applications/review [post]
func (h *ReviewHandler) Review(c *fiber.Ctx) error {
	var req ReviewDecision
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	var (
		app    interface{}
		svcErr error
	)
	if *req.Approved {
		app, svcErr = h.appService.Review(c.Context(), req.ApplicationID, reviewActor(c),
			&services.ReviewInput{Note: req.Note})
	} else {
		app, svcErr = h.appService.RejectReview(c.Context(), req.ApplicationID, reviewActor(c),
			&services.RejectInput{Note: req.Note})
	}
	if svcErr != nil {
		return applicationTransitionError(c, svcErr)
	}
	if *req.Approved {
		return response.Success(c, "Application forwarded for approval", app)
	}
	return response.Success(c, "Application rejected", app)
}

// applicationTransitionError maps lifecycle errors onto HTTP statuses shared
// by the review and approval desks.
func applicationTransitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		return response.NotFound(c, "Application not found")
	case errors.Is(err, domain.ErrStaleState):
		return response.Conflict(c, "Application was already processed")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, "Application is not in the required status")
	case errors.Is(err, domain.ErrLimitOutOfRange):
		return response.BadRequest(c, "Approved limit must be positive and within the plafond maximum")
	default:
		return response.InternalServerError(c, "Failed to process application")
	}
}
