package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, s := range p.subjects {
		if s == subject {
			total++
		}
	}
	return total
}

type sequenceTokens struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceTokens) Issue() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("token-%d", s.n), nil
}

type testStack struct {
	db          *gorm.DB
	redis       *redis.Client
	publisher   *recordingPublisher
	activity    repository.ActivityLogRepository
	assessments AssessmentService
	evaluators  EvaluatorService
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AssessmentAnswerSet{},
		&models.AssessmentResult{},
		&models.Evaluator{},
		&models.Subscription{},
		&models.ActivityLog{},
	))
	return db
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := setupServiceDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	publisher := &recordingPublisher{}
	logger := testLogger()
	validate := validator.New()
	cache := NewOverviewCache(redisClient, time.Minute, logger)
	events := NewEventBus(publisher, "leadership", logger)
	activityRepo := repository.NewActivityLogRepository(db)
	activity := NewActivityService(activityRepo, logger)

	evaluators := NewEvaluatorService(EvaluatorServiceDeps{
		Evaluators:   repository.NewEvaluatorRepository(db),
		Tokens:       &sequenceTokens{},
		Cache:        cache,
		Events:       events,
		Activity:     activity,
		Validator:    validate,
		Logger:       logger,
		TokenTTL:     30 * 24 * time.Hour,
		MinGroupSize: scoring.DefaultMinGroupSize,
	})
	assessments := NewAssessmentService(AssessmentServiceDeps{
		Results:   repository.NewResultRepository(db),
		Progress:  repository.NewAnswerSetRepository(db),
		Feedback:  evaluators,
		Cache:     cache,
		Events:    events,
		Activity:  activity,
		Validator: validate,
		Logger:    logger,
	})

	return &testStack{
		db:          db,
		redis:       redisClient,
		publisher:   publisher,
		activity:    activityRepo,
		assessments: assessments,
		evaluators:  evaluators,
	}
}

// ratings answers question ids from..to with the same value.
func ratings(from, to int, value interface{}) scoring.RawAnswers {
	raw := scoring.RawAnswers{}
	for id := from; id <= to; id++ {
		raw[strconv.Itoa(id)] = value
	}
	return raw
}

func tkiPattern(pattern string) scoring.RawAnswers {
	raw := scoring.RawAnswers{}
	for idx, choice := range pattern {
		raw[strconv.Itoa(idx+1)] = string(choice)
	}
	return raw
}
