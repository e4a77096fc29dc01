package handlers

import (
	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApprovalHandler handles the branch manager approval desk
type ApprovalHandler struct {
	appService *services.ApplicationService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(appService *services.ApplicationService) *ApprovalHandler {
	return &ApprovalHandler{appService: appService}
}

func approvalActor(c *fiber.Ctx) services.Actor {
	userID, username, _ := middleware.ActorFromContext(c)
	return services.Actor{ID: userID, Username: username, Role: domain.RoleBranchManager}
}

// Pending lists applications waiting for approval, oldest first
// @Summary List applications waiting approval
// @Tags Approval
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /branch-manager/plafond-applications/pending [get]
func (h *ApprovalHandler) Pending(c *fiber.Ctx) error {
	apps, err := h.appService.ListByStatus(c.Context(), domain.StatusWaitingApproval)
	if err != nil {
		return response.InternalServerError(c, "Failed to load applications")
	}
	return response.Success(c, "Applications waiting approval retrieved", apps)
}

// ApprovalDecision is the approval desk's wire payload. approved=false rejects
// the application; approvedLimit is required only when granting.
type ApprovalDecision struct {
	ApplicationID uint    `json:"applicationId" validate:"required"`
	Approved      *bool   `json:"approved" validate:"required"`
	ApprovedLimit float64 `json:"approvedLimit"`
	Note          string  `json:"note"`
}

// Approve grants a limit on a reviewed application, or rejects it
// @Summary Approve application
// @Tags Approval
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ApprovalDecision true "Approval decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branch-manager/plafond-applications/approve [post]
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	var req ApprovalDecision
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	var (
		app    interface{}
		svcErr error
	)
	if *req.Approved {
		app, svcErr = h.appService.Approve(c.Context(), req.ApplicationID, approvalActor(c),
			&services.ApproveInput{ApprovedLimit: req.ApprovedLimit, Note: req.Note})
	} else {
		app, svcErr = h.appService.RejectApproval(c.Context(), req.ApplicationID, approvalActor(c),
			&services.RejectInput{Note: req.Note})
	}
	if svcErr != nil {
		return applicationTransitionError(c, svcErr)
	}
	if *req.Approved {
		return response.Success(c, "Application approved", app)
	}
	return response.Success(c, "Application rejected", app)
}
