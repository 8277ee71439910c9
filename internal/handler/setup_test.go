package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/config"
	"github.com/noah-isme/leadership-assessment-api/internal/database"
	"github.com/noah-isme/leadership-assessment-api/internal/handler"
	"github.com/noah-isme/leadership-assessment-api/internal/middleware"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/router"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Details map[string]interface{} `json:"details"`
	raw     []byte
}

// fakeJWT stands in for token validation: identity comes from test headers.
func fakeJWT(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get("X-Test-User", "1"))
	if err != nil {
		return fiber.ErrUnauthorized
	}
	c.Locals("user_id", uint(id))
	c.Locals("user_role", c.Get("X-Test-Role", "user"))
	return c.Next()
}

func setupApp(t *testing.T, overrides ...func(*router.Dependencies)) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	cache := service.NewOverviewCache(nil, time.Minute, logger)
	events := service.NewEventBus(nil, "leadership", logger)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	gate, err := service.NewPlanGate(repository.NewSubscriptionRepository(db), service.DefaultPlanRequirements())
	require.NoError(t, err)

	evaluators := service.NewEvaluatorService(service.EvaluatorServiceDeps{
		Evaluators:   repository.NewEvaluatorRepository(db),
		Cache:        cache,
		Events:       events,
		Activity:     activity,
		Validator:    validate,
		Logger:       logger,
		TokenTTL:     24 * time.Hour,
		MinGroupSize: 3,
	})
	assessments := service.NewAssessmentService(service.AssessmentServiceDeps{
		Results:   repository.NewResultRepository(db),
		Progress:  repository.NewAnswerSetRepository(db),
		Feedback:  evaluators,
		Cache:     cache,
		Events:    events,
		Activity:  activity,
		Validator: validate,
		Logger:    logger,
	})

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	deps := router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessments, logger),
		ResultHandler:     handler.NewResultHandler(assessments, logger),
		EvaluatorHandler:  handler.NewEvaluatorHandler(evaluators, logger),
		FeedbackHandler:   handler.NewFeedbackHandler(evaluators, logger),
		ActivityHandler:   handler.NewActivityHandler(activity, logger),
		PlanGate:          gate,
		HealthProbes:      map[string]handler.HealthProbe{"database": database.Ping(db)},
		JWTMiddleware:     fakeJWT,
	}
	for _, override := range overrides {
		override(&deps)
	}
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", JWTSecret: "secret"}, deps)

	return app, db
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	env.raw = raw
	return resp.StatusCode, env
}

func asUser(id uint, role string) map[string]string {
	return map[string]string{"X-Test-User": strconv.FormatUint(uint64(id), 10), "X-Test-Role": role}
}

func answers(from, to int, value interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for id := from; id <= to; id++ {
		out[strconv.Itoa(id)] = value
	}
	return out
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
