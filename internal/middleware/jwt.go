package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// JWTProtected validates HMAC-signed bearer tokens issued by the identity service and binds
// user_id (uint) and user_role to the request. Tokens without a usable subject are rejected.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))

	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authorization header missing", nil)
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid authorization header", nil)
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid token", nil)
		}

		userID := extractUserIDFromClaims(claims)
		if userID == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "token subject missing", nil)
		}
		c.Locals("user_id", *userID)

		role := extractUserRoleFromClaims(claims)
		if role == "" {
			role = AuthRoleUser
		}
		c.Locals("user_role", role)

		return c.Next()
	}
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	for _, key := range []string{"sub", "user_id"} {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil && normalized > 0 {
				return &normalized
			}
		}
	}
	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v != float64(uint(v)) {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

// normalizeRole picks the highest-privilege role from a single role or a role list.
func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		best := ""
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				continue
			}
			role := strings.ToLower(strings.TrimSpace(str))
			if rolePrecedence(role) > rolePrecedence(best) {
				best = role
			}
		}
		return best
	default:
		return ""
	}
}

func rolePrecedence(role string) int {
	switch role {
	case AuthRoleAdmin:
		return 3
	case AuthRoleCoach:
		return 2
	case "":
		return 0
	default:
		return 1
	}
}
