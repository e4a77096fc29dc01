package handlers

import (
	"errors"

	"plafondhub/internal/adapters/http/middleware"
	"plafondhub/internal/core/services"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login handles user login
// @Summary Login
// @Description Authenticate by username or email and return an access token with the caller's dashboard redirect
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "Account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "Login successful", result)
}

// Register handles customer self-registration
// @Summary Register
// @Description Create a customer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	user, err := h.userService.Register(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		default:
			return response.InternalServerError(c, "Failed to register")
		}
	}

	return response.Created(c, "Registration successful", user)
}

// ForgotPassword issues a reset token
// @Summary Forgot password
// @Description Send a password reset link to the given email. Always returns success.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.ForgotPasswordInput true "Email"
// @Success 200 {object} response.Response
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req services.ForgotPasswordInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	if err := h.authService.ForgotPassword(c.Context(), &req); err != nil {
		return response.InternalServerError(c, "Failed to process request")
	}

	return response.Success(c, "If the email exists, a reset link has been sent", nil)
}

// ValidateResetToken checks a reset token without consuming it
// @Summary Validate reset token
// @Tags Auth
// @Produce json
// @Param token query string true "Reset token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/validate-token [get]
func (h *AuthHandler) ValidateResetToken(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return response.BadRequest(c, "Token is required")
	}

	if err := h.authService.ValidateResetToken(c.Context(), token); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			return response.BadRequest(c, "Reset token is invalid or expired")
		}
		return response.InternalServerError(c, "Failed to validate token")
	}

	return response.Success(c, "Token is valid", nil)
}

// ResetPassword consumes a reset token and sets a new password
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.ResetPasswordInput true "Token and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	if err := h.authService.ResetPassword(c.Context(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidResetToken):
			return response.BadRequest(c, "Reset token is invalid or expired")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password has been reset", nil)
}

// Profile returns the authenticated user's profile
// @Summary Get own profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	user, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "Profile retrieved", user)
}

// ChangePassword handles self-service password change
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, _, _ := middleware.ActorFromContext(c)

	var req services.ChangePasswordInput
	if msg := parseBody(c, &req); msg != "" {
		return response.BadRequest(c, msg)
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrOldPasswordWrong):
			return response.BadRequest(c, "Old password is incorrect")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed", nil)
}
