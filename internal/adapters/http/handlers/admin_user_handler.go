package handlers

import (
	"errors"

	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/pagination"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminUserHandler handles user administration endpoints
type AdminUserHandler struct {
	userService *services.UserService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(userService *services.UserService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService}
}

// List returns users with pagination
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminUserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	out, err := h.userService.ListUsers(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load users")
	}
	return response.Success(c, "Users retrieved", pagination.NewResponse(out.Users, params, out.Total))
}

// Get returns one user
// @Summary Get user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [get]
func (h *AdminUserHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}
	return response.Success(c, "User retrieved", user)
}

// Create adds a staff or customer account with chosen roles
// @Summary Create user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users [post]
func (h *AdminUserHandler) Create(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	user, err := h.userService.CreateUser(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, services.ErrUnknownRole):
			return response.BadRequest(c, "Unknown role name")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}
	return response.Created(c, "User created", user)
}

// Update modifies a user's profile, active flag or role set
// @Summary Update user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [put]
func (h *AdminUserHandler) Update(c *fiber.Ctx) error {
	actorID, _, _ := middleware.ActorFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req services.UpdateUserInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	user, err := h.userService.UpdateUser(c.Context(), uint(id), actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, services.ErrUnknownRole):
			return response.BadRequest(c, "Unknown role name")
		case errors.Is(err, services.ErrCannotDemoteSelf):
			return response.BadRequest(c, "You cannot change your own roles")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}
	return response.Success(c, "User updated", user)
}

// Delete soft-deletes a user
// @Summary Delete user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *AdminUserHandler) Delete(c *fiber.Ctx) error {
	actorID, _, _ := middleware.ActorFromContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Context(), uint(id), actorID); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrCannotDeleteSelf):
			return response.BadRequest(c, "You cannot delete your own account")
		default:
			return response.InternalServerError(c, "Failed to delete user")
		}
	}
	return response.Success(c, "User deleted", nil)
}

// Roles returns the closed role catalog
// @Summary List roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/roles [get]
func (h *AdminUserHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.userService.ListRoles(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load roles")
	}
	return response.Success(c, "Roles retrieved", roles)
}
