package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/observability"
)

// Observability records Prometheus metrics and a structured latency log line for every API request.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		if !strings.HasPrefix(c.Path(), "/api") {
			return err
		}

		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}
		statusLabel := strconv.Itoa(status)

		observability.APIRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.APILatency().WithLabelValues(method, route).Observe(duration.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.APIErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		requestLogger := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Float64("latency_ms", float64(duration)/float64(time.Millisecond)).
			Str("latency_bucket", latencyBucket(duration)).
			Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("request completed with client error")
		default:
			requestLogger.Info().Msg("request completed")
		}

		return err
	}
}

// routeTemplate keeps metric cardinality bounded: feedback tokens and ids never become labels.
func routeTemplate(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" && c.Route().Path != "/" {
		return c.Route().Path
	}
	return "unmatched"
}

func latencyBucket(duration time.Duration) string {
	switch {
	case duration <= 25*time.Millisecond:
		return "<=25ms"
	case duration <= 50*time.Millisecond:
		return "<=50ms"
	case duration <= 100*time.Millisecond:
		return "<=100ms"
	case duration <= 250*time.Millisecond:
		return "<=250ms"
	case duration <= 500*time.Millisecond:
		return "<=500ms"
	default:
		return ">500ms"
	}
}
