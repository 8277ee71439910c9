package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leadership-assessment-api/internal/config"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// HealthProbe checks one backing dependency.
type HealthProbe func(ctx context.Context) error

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Service       string            `json:"service"`
	Environment   string            `json:"environment"`
	ConfigVersion string            `json:"config_version"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports service health. Any failing probe turns the response into a 503.
func HealthCheck(cfg config.Config, probes map[string]HealthProbe) fiber.Handler {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:        "ok",
			Timestamp:     time.Now().UTC(),
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			ConfigVersion: scoring.ConfigVersion,
		}

		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()

			payload.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := probes[name](ctx); err != nil {
					payload.Checks[name] = "down"
					payload.Status = "degraded"
					continue
				}
				payload.Checks[name] = "up"
			}
		}

		if payload.Status != "ok" {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
