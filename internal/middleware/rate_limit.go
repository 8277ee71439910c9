package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// RateLimit creates a limiter keyed by the authenticated user, falling back to the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	return newLimiter(max, window, func(c *fiber.Ctx) string {
		if userID, ok := c.Locals("user_id").(uint); ok && userID > 0 {
			return fmt.Sprintf("%s:user:%d", identifier, userID)
		}
		return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
	})
}

// TokenRateLimit limits anonymous feedback-link traffic per client IP so tokens cannot be
// brute-forced and a single link cannot be hammered.
func TokenRateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	return newLimiter(max, window, func(c *fiber.Ctx) string {
		return fmt.Sprintf("%s:ip:%s", identifier, c.IP())
	})
}

func newLimiter(max int, window time.Duration, key func(c *fiber.Ctx) string) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "too many requests", nil)
		},
	})
}
