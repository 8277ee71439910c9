package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

const maxCorrelationIDLength = 64

// CorrelationID tags every request with an identifier that request logs and error logs carry.
// Caller supplied ids are reused only when they are short and printable.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := acceptCorrelationID(c.Get("X-Correlation-ID"))
		if incoming == "" {
			incoming = acceptCorrelationID(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals("correlation_id", incoming)
		c.Set("X-Correlation-ID", incoming)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationKey, incoming))

		return c.Next()
	}
}

func acceptCorrelationID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxCorrelationIDLength {
		return ""
	}
	for _, r := range value {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum && r != '-' && r != '_' && r != '.' {
			return ""
		}
	}
	return value
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationKey).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals("correlation_id").(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
