package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/leadership-assessment-api/internal/config"
	"github.com/noah-isme/leadership-assessment-api/internal/handler"
	"github.com/noah-isme/leadership-assessment-api/internal/middleware"
	"github.com/noah-isme/leadership-assessment-api/internal/observability"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssessmentHandler *handler.AssessmentHandler
	ResultHandler     *handler.ResultHandler
	EvaluatorHandler  *handler.EvaluatorHandler
	FeedbackHandler   *handler.FeedbackHandler
	ActivityHandler   *handler.ActivityHandler
	PlanGate          service.PlanGate
	HealthProbes      map[string]handler.HealthProbe
	JWTMiddleware     fiber.Handler
	// FeedbackLimiter throttles the public token routes. Nil disables throttling.
	FeedbackLimiter fiber.Handler
	// WriteLimiter throttles authenticated answer writes and invitations. Nil disables throttling.
	WriteLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}
	passthrough := func(c *fiber.Ctx) error { return c.Next() }
	writeLimiter := deps.WriteLimiter
	if writeLimiter == nil {
		writeLimiter = passthrough
	}

	// Public rater form, authenticated by the feedback token alone.
	if deps.FeedbackHandler != nil {
		limiter := deps.FeedbackLimiter
		if limiter == nil {
			limiter = passthrough
		}
		deps.FeedbackHandler.Register(api.Group("/feedback", limiter))
	}

	if deps.AssessmentHandler != nil {
		assessments := api.Group("/assessments", jwtMiddleware)
		deps.AssessmentHandler.Register(assessments, middleware.RequirePlan(deps.PlanGate, middleware.FromParam("type")), writeLimiter)
	}

	if deps.ResultHandler != nil {
		deps.ResultHandler.Register(api.Group("/results", jwtMiddleware))

		coach := api.Group("/coach", jwtMiddleware, middleware.Authorize(middleware.AuthOptions{Role: middleware.AuthRoleCoach}))
		deps.ResultHandler.RegisterCoach(coach)
	}

	if deps.EvaluatorHandler != nil {
		evaluators := api.Group("/evaluators", jwtMiddleware)
		deps.EvaluatorHandler.Register(evaluators, middleware.RequirePlan(deps.PlanGate, middleware.Fixed(scoring.TypeSelf360)), writeLimiter)
	}

	if deps.ActivityHandler != nil {
		admin := api.Group("/admin/activity", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleAdmin))
		deps.ActivityHandler.Register(admin)
	}
}
