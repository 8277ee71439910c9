package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/config"
	"github.com/noah-isme/leadership-assessment-api/internal/database"
	"github.com/noah-isme/leadership-assessment-api/internal/handler"
	"github.com/noah-isme/leadership-assessment-api/internal/middleware"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/router"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	probes := map[string]handler.HealthProbe{"database": database.Ping(db)}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		probes["redis"] = database.PingRedis(redisClient)
	} else {
		logger.Warn().Msg("redis url not configured, results overview cache disabled")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	var publisher service.EventPublisher
	if natsConn != nil {
		defer natsConn.Drain()
		publisher = natsConn
		probes["nats"] = database.PingNATS(natsConn)
	} else {
		logger.Warn().Msg("nats url not configured, domain events disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	resultRepo := repository.NewResultRepository(db)
	answerSetRepo := repository.NewAnswerSetRepository(db)
	evaluatorRepo := repository.NewEvaluatorRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	cache := service.NewOverviewCache(redisClient, cfg.ResultsCacheTTL, logger)
	events := service.NewEventBus(publisher, cfg.EventSubjectPrefix, logger)
	activityService := service.NewActivityService(activityRepo, logger)

	planGate, err := service.NewPlanGate(subscriptionRepo, cfg.PlanRequirements)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid plan requirements")
	}

	evaluatorService := service.NewEvaluatorService(service.EvaluatorServiceDeps{
		Evaluators:   evaluatorRepo,
		Tokens:       service.UUIDTokenIssuer{},
		Cache:        cache,
		Events:       events,
		Activity:     activityService,
		Validator:    validate,
		Logger:       logger,
		TokenTTL:     cfg.EvaluatorTokenTTL,
		MinGroupSize: cfg.FeedbackMinGroupSize,
	})
	assessmentService := service.NewAssessmentService(service.AssessmentServiceDeps{
		Results:   resultRepo,
		Progress:  answerSetRepo,
		Feedback:  evaluatorService,
		Cache:     cache,
		Events:    events,
		Activity:  activityService,
		Validator: validate,
		Logger:    logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    256 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		ResultHandler:     handler.NewResultHandler(assessmentService, logger),
		EvaluatorHandler:  handler.NewEvaluatorHandler(evaluatorService, logger),
		FeedbackHandler:   handler.NewFeedbackHandler(evaluatorService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		PlanGate:          planGate,
		HealthProbes:      probes,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		FeedbackLimiter:   middleware.TokenRateLimit("feedback", cfg.FeedbackRateLimit, cfg.FeedbackRateWindow),
		WriteLimiter:      middleware.RateLimit("answers", cfg.SubmissionRateLimit, cfg.SubmissionRateWindow),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
