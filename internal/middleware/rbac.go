package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// RequireRole admits requests whose role claim is one of roles. Matching is exact: coaches do
// not pass an admin-only route. A token without a role claim is treated as a plain user.
func RequireRole(roles ...string) fiber.Handler {
	required := make([]string, 0, len(roles))
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized == "" || allowed[normalized] {
			continue
		}
		allowed[normalized] = true
		required = append(required, normalized)
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if role == "" {
			role = AuthRoleUser
		}
		if !allowed[role] {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"required_roles": required})
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	var raw string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		raw = v
	case fmt.Stringer:
		raw = v.String()
	default:
		raw = fmt.Sprintf("%v", v)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
