package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny   = "any"
	AuthRoleUser  = "user"
	AuthRoleCoach = "coach"
	AuthRoleAdmin = "admin"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
	// AllowAnonymous lets requests without an authenticated user through when Role is any.
	AllowAnonymous bool
}

// WithAuth wraps a handler with authentication and role guards. Admins pass every role check
// and coaches pass user checks.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	allowAnonymous := opts.AllowAnonymous && role == AuthRoleAny

	return func(c *fiber.Ctx) error {
		if userID, _ := c.Locals("user_id").(uint); userID == 0 && !allowAnonymous {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		if currentRole == "" {
			currentRole = AuthRoleUser
		}
		if !roleSatisfies(currentRole, role) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}

// Authorize applies the WithAuth checks as group middleware.
func Authorize(opts AuthOptions) fiber.Handler {
	return WithAuth(func(c *fiber.Ctx) error { return c.Next() }, opts)
}

func roleSatisfies(current, required string) bool {
	switch required {
	case AuthRoleUser:
		return current == AuthRoleUser || current == AuthRoleCoach || current == AuthRoleAdmin
	case AuthRoleCoach:
		return current == AuthRoleCoach || current == AuthRoleAdmin
	case AuthRoleAdmin:
		return current == AuthRoleAdmin
	default:
		return current == required
	}
}
