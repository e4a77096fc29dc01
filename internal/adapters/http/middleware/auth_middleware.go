package middleware

import (
	"strings"

	"plafondhub/internal/config"
	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/jwt"
	"plafondhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// in the request context. Tokens travel only in the Authorization header.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Access token required")
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("fullName", claims.FullName)
		c.Locals("roles", claims.Roles)

		return c.Next()
	}
}

// RequireRoles allows the request through when the caller holds at least one
// of the given roles. Denials carry the caller's own dashboard redirect so the
// portal can route them home instead of showing a dead end.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := domain.RoleSet(allowed)
	return func(c *fiber.Ctx) error {
		names, ok := c.Locals("roles").([]string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		roles := domain.ParseRoleSet(names)
		if roles.Intersects(allowedSet) {
			return c.Next()
		}

		return response.ErrorWithData(c, fiber.StatusForbidden,
			"You don't have permission to access this resource",
			fiber.Map{"redirect": domain.RedirectFor(roles)},
		)
	}
}

// SuperAdminOnly restricts a route to SUPER_ADMIN
func SuperAdminOnly() fiber.Handler {
	return RequireRoles(domain.RoleSuperAdmin)
}

// ActorFromContext rebuilds the acting identity from the request context. The
// role recorded is the caller's highest-priority role for audit purposes.
func ActorFromContext(c *fiber.Ctx) (uint, string, domain.RoleSet) {
	userID, _ := c.Locals("userID").(uint)
	username, _ := c.Locals("username").(string)
	names, _ := c.Locals("roles").([]string)
	return userID, username, domain.ParseRoleSet(names)
}
