package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/observability"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

var (
	// ErrEvaluatorNotFound indicates the evaluator does not exist for the subject.
	ErrEvaluatorNotFound = errors.New("evaluator not found")
	// ErrFeedbackTokenNotFound indicates an unknown feedback link.
	ErrFeedbackTokenNotFound = errors.New("feedback link not found")
	// ErrInvalidEvaluatorName indicates a name that is empty once markup is stripped.
	ErrInvalidEvaluatorName = errors.New("evaluator name is required")
)

// EvaluatorService manages 360° raters for a subject and their single-use feedback links.
type EvaluatorService interface {
	FeedbackProvider
	Invite(ctx context.Context, actor ActivityActor, req dto.EvaluatorInviteRequest) (dto.EvaluatorResponse, error)
	List(ctx context.Context, subjectID uint) ([]dto.EvaluatorResponse, error)
	Remove(ctx context.Context, actor ActivityActor, evaluatorID uint) error
	Open(ctx context.Context, token string) (dto.FeedbackFormResponse, error)
	Submit(ctx context.Context, token string, req dto.FeedbackSubmitRequest) (dto.FeedbackSubmitResponse, error)
}

// EvaluatorServiceDeps groups the collaborators of the evaluator service.
type EvaluatorServiceDeps struct {
	Evaluators   repository.EvaluatorRepository
	Tokens       TokenIssuer
	Cache        *OverviewCache
	Events       *EventBus
	Activity     ActivityRecorder
	Validator    *validator.Validate
	Logger       zerolog.Logger
	TokenTTL     time.Duration
	MinGroupSize int
}

type evaluatorService struct {
	evaluators   repository.EvaluatorRepository
	tokens       TokenIssuer
	cache        *OverviewCache
	events       *EventBus
	activity     ActivityRecorder
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	tokenTTL     time.Duration
	minGroupSize int
	now          func() time.Time
}

// NewEvaluatorService constructs the evaluator lifecycle service.
func NewEvaluatorService(deps EvaluatorServiceDeps) EvaluatorService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = UUIDTokenIssuer{}
	}
	return &evaluatorService{
		evaluators:   deps.Evaluators,
		tokens:       tokens,
		cache:        deps.Cache,
		events:       deps.Events,
		activity:     deps.Activity,
		validator:    deps.Validator,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       deps.Logger.With().Str("component", "evaluator_service").Logger(),
		tokenTTL:     deps.TokenTTL,
		minGroupSize: deps.MinGroupSize,
		now:          time.Now,
	}
}

func (s *evaluatorService) Invite(ctx context.Context, actor ActivityActor, req dto.EvaluatorInviteRequest) (dto.EvaluatorResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	name := s.clean(req.Name)
	if name == "" {
		return dto.EvaluatorResponse{}, ErrInvalidEvaluatorName
	}

	token, err := s.tokens.Issue()
	if err != nil {
		return dto.EvaluatorResponse{}, fmt.Errorf("issue feedback token: %w", err)
	}

	evaluator := models.Evaluator{
		SubjectID:    actor.ID,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Relationship: req.Relationship,
		Token:        token,
		Status:       models.EvaluatorStatusInvited,
	}
	if s.tokenTTL > 0 {
		expires := s.now().UTC().Add(s.tokenTTL)
		evaluator.ExpiresAt = &expires
	}

	if err := s.evaluators.Create(ctx, &evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	s.cache.Invalidate(ctx, actor.ID)
	s.events.Publish(EventEvaluatorInvited, map[string]interface{}{
		"evaluator_id": evaluator.ID,
		"subject_id":   evaluator.SubjectID,
		"name":         evaluator.Name,
		"email":        evaluator.Email,
		"relationship": evaluator.Relationship,
		"token":        evaluator.Token,
		"expires_at":   evaluator.ExpiresAt,
	})

	entityID := evaluator.ID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		SubjectID:  actor.ID,
		Action:     models.ActivityEvaluatorInvited,
		EntityType: "evaluator",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"relationship": evaluator.Relationship, "email": evaluator.Email},
	})

	return dto.NewEvaluatorResponse(evaluator), nil
}

func (s *evaluatorService) List(ctx context.Context, subjectID uint) ([]dto.EvaluatorResponse, error) {
	evaluators, err := s.evaluators.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return dto.NewEvaluatorResponseSlice(evaluators), nil
}

// Remove withdraws an invitation. Completed evaluators stay part of the aggregate.
func (s *evaluatorService) Remove(ctx context.Context, actor ActivityActor, evaluatorID uint) error {
	if err := s.evaluators.DeleteInvited(ctx, actor.ID, evaluatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvaluatorNotFound
		}
		return err
	}

	s.cache.Invalidate(ctx, actor.ID)

	entityID := evaluatorID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		SubjectID:  actor.ID,
		Action:     models.ActivityEvaluatorRemoved,
		EntityType: "evaluator",
		EntityID:   &entityID,
	})
	return nil
}

// Open resolves a feedback link. A used link still resolves so the rater sees that the
// submission went through; an expired one does not.
func (s *evaluatorService) Open(ctx context.Context, token string) (dto.FeedbackFormResponse, error) {
	evaluator, err := s.lookup(ctx, token)
	if err != nil {
		return dto.FeedbackFormResponse{}, err
	}

	if !evaluator.IsCompleted() {
		now := s.now().UTC()
		if evaluator.IsExpired(now) {
			return dto.FeedbackFormResponse{}, scoring.ErrTokenExpired
		}
		if err := s.evaluators.MarkOpened(ctx, token, now); err != nil {
			s.logger.Warn().Err(err).Uint("evaluator_id", evaluator.ID).Msg("failed to record feedback link open")
		}
	}

	catalogue, err := scoring.Catalogue(scoring.TypeSelf360)
	if err != nil {
		return dto.FeedbackFormResponse{}, err
	}

	return dto.FeedbackFormResponse{
		Relationship: evaluator.Relationship,
		Status:       evaluator.Status,
		ExpiresAt:    evaluator.ExpiresAt,
		Catalogue:    catalogue,
	}, nil
}

// Submit completes a feedback link exactly once and refreshes the subject's aggregate.
func (s *evaluatorService) Submit(ctx context.Context, token string, req dto.FeedbackSubmitRequest) (dto.FeedbackSubmitResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/leadership-assessment-api/internal/service/evaluator")
	ctx, span := tracer.Start(ctx, "feedback.complete")
	defer span.End()

	response, err := s.submit(ctx, token, req)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, scoring.ErrValidation):
		outcome = "invalid"
	case errors.Is(err, scoring.ErrAlreadyCompleted):
		outcome = "conflict"
	case errors.Is(err, scoring.ErrTokenExpired):
		outcome = "expired"
	case errors.Is(err, ErrFeedbackTokenNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("feedback.outcome", outcome))
	observability.FeedbackSubmissions().WithLabelValues(outcome).Inc()

	return response, err
}

func (s *evaluatorService) submit(ctx context.Context, token string, req dto.FeedbackSubmitRequest) (dto.FeedbackSubmitResponse, error) {
	evaluator, err := s.lookup(ctx, token)
	if err != nil {
		return dto.FeedbackSubmitResponse{}, err
	}
	now := s.now().UTC()
	if err := scoring.CanComplete(scoring.EvaluatorStatus(evaluator.Status), evaluator.ExpiresAt, now); err != nil {
		return dto.FeedbackSubmitResponse{}, err
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.FeedbackSubmitResponse{}, err
	}
	answers, err := scoring.Validate(scoring.TypeSelf360, req.Answers)
	if err != nil {
		return dto.FeedbackSubmitResponse{}, err
	}

	ratings := make(map[string]int, len(answers.Ratings))
	for id, rating := range answers.Ratings {
		ratings[strconv.Itoa(id)] = rating
	}

	completed, err := s.evaluators.Complete(ctx, token, ratings, s.clean(req.Comment), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackSubmitResponse{}, ErrFeedbackTokenNotFound
		}
		return dto.FeedbackSubmitResponse{}, err
	}

	s.refreshAggregate(ctx, completed.SubjectID)

	entityID := completed.ID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		SubjectID:  completed.SubjectID,
		Action:     models.ActivityFeedbackCompleted,
		EntityType: "evaluator",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"relationship": completed.Relationship},
	})

	return dto.FeedbackSubmitResponse{Status: completed.Status, CompletedAt: completed.CompletedAt}, nil
}

// refreshAggregate recomputes the subject's aggregate from a fresh snapshot of completed
// submissions. The submission is already durable, so failures here are logged only.
func (s *evaluatorService) refreshAggregate(ctx context.Context, subjectID uint) {
	s.cache.Invalidate(ctx, subjectID)

	evaluators, err := s.evaluators.ListCompletedBySubject(ctx, subjectID)
	if err != nil {
		s.logger.Error().Err(err).Uint("subject_id", subjectID).Msg("failed to recompute feedback aggregate")
		return
	}

	aggregate, ok := scoring.Aggregate(subjectID, toEvaluatorAnswers(evaluators), scoring.AggregateOptions{MinGroupSize: s.minGroupSize})
	observability.AggregateRecomputations().Inc()
	if !ok {
		return
	}
	observability.AggregateRespondents().Observe(float64(aggregate.RespondentCount))

	s.events.Publish(EventFeedbackUpdated, map[string]interface{}{
		"subject_id":       subjectID,
		"respondent_count": aggregate.RespondentCount,
		"scores":           aggregate.Scores,
		"overall_score":    aggregate.OverallScore,
		"dominant_result":  aggregate.DominantResult,
	})
}

// Feedback returns the subject's aggregate. Aggregate stays nil until somebody completes.
func (s *evaluatorService) Feedback(ctx context.Context, subjectID uint) (dto.FeedbackResponse, error) {
	evaluators, err := s.evaluators.ListBySubject(ctx, subjectID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	now := s.now().UTC()
	pending := 0
	for _, evaluator := range evaluators {
		if !evaluator.IsCompleted() && !evaluator.IsExpired(now) {
			pending++
		}
	}

	response := dto.FeedbackResponse{PendingCount: pending}
	aggregate, ok := scoring.Aggregate(subjectID, toEvaluatorAnswers(evaluators), scoring.AggregateOptions{MinGroupSize: s.minGroupSize})
	if ok {
		response.Available = true
		response.RespondentCount = aggregate.RespondentCount
		response.Aggregate = &aggregate
	}
	return response, nil
}

func (s *evaluatorService) lookup(ctx context.Context, token string) (models.Evaluator, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Evaluator{}, ErrFeedbackTokenNotFound
	}
	evaluator, err := s.evaluators.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evaluator{}, ErrFeedbackTokenNotFound
		}
		return models.Evaluator{}, err
	}
	return evaluator, nil
}

const maxSanitizePasses = 8

// clean reduces free text to plain text. Entity-encoded markup decodes into new markup, so
// sanitising repeats until the decoded output is stable. Input that never settles is dropped.
func (s *evaluatorService) clean(value string) string {
	current := value
	for pass := 0; pass < maxSanitizePasses; pass++ {
		next := html.UnescapeString(s.sanitizer.Sanitize(current))
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	return ""
}

func toEvaluatorAnswers(evaluators []models.Evaluator) []scoring.EvaluatorAnswers {
	answers := make([]scoring.EvaluatorAnswers, 0, len(evaluators))
	for _, evaluator := range evaluators {
		stored := evaluator.Ratings.Data()
		ratings := make(map[int]int, len(stored))
		for key, rating := range stored {
			id, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			ratings[id] = rating
		}
		answers = append(answers, scoring.EvaluatorAnswers{
			Relationship: scoring.Relationship(evaluator.Relationship),
			Status:       scoring.EvaluatorStatus(evaluator.Status),
			Ratings:      ratings,
		})
	}
	return answers
}
