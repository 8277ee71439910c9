package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/observability"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

// FeedbackProvider supplies the 360° aggregate shown next to a user's results.
type FeedbackProvider interface {
	Feedback(ctx context.Context, subjectID uint) (dto.FeedbackResponse, error)
}

// AssessmentService runs the self-assessment workflow: autosave, preview, submission and results.
type AssessmentService interface {
	Catalogue(assessmentType string) (scoring.QuestionCatalogue, error)
	GetProgress(ctx context.Context, userID uint, assessmentType string) (dto.ProgressResponse, error)
	SaveProgress(ctx context.Context, actor ActivityActor, assessmentType string, req dto.AnswersRequest) (dto.ProgressResponse, error)
	Preview(ctx context.Context, userID uint, assessmentType string) (dto.AssessmentResultResponse, error)
	Submit(ctx context.Context, actor ActivityActor, assessmentType string, req dto.AnswersRequest) (dto.AssessmentResultResponse, error)
	ListResults(ctx context.Context, userID uint, assessmentType string) ([]dto.AssessmentResultResponse, error)
	Overview(ctx context.Context, userID uint) (dto.ResultsOverviewResponse, error)
}

type assessmentService struct {
	results   repository.ResultRepository
	progress  repository.AnswerSetRepository
	feedback  FeedbackProvider
	cache     *OverviewCache
	events    *EventBus
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// AssessmentServiceDeps groups the collaborators of the assessment service.
type AssessmentServiceDeps struct {
	Results   repository.ResultRepository
	Progress  repository.AnswerSetRepository
	Feedback  FeedbackProvider
	Cache     *OverviewCache
	Events    *EventBus
	Activity  ActivityRecorder
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// NewAssessmentService constructs the assessment workflow service.
func NewAssessmentService(deps AssessmentServiceDeps) AssessmentService {
	return &assessmentService{
		results:   deps.Results,
		progress:  deps.Progress,
		feedback:  deps.Feedback,
		cache:     deps.Cache,
		events:    deps.Events,
		activity:  deps.Activity,
		validator: deps.Validator,
		logger:    deps.Logger.With().Str("component", "assessment_service").Logger(),
		now:       time.Now,
	}
}

func parseAssessmentType(raw string) (scoring.AssessmentType, error) {
	assessmentType, ok := scoring.ParseAssessmentType(raw)
	if !ok {
		return "", &scoring.ValidationError{Type: scoring.AssessmentType(raw), Reason: scoring.ReasonUnsupportedType}
	}
	return assessmentType, nil
}

func (s *assessmentService) Catalogue(assessmentType string) (scoring.QuestionCatalogue, error) {
	parsed, err := parseAssessmentType(assessmentType)
	if err != nil {
		return scoring.QuestionCatalogue{}, err
	}
	return scoring.Catalogue(parsed)
}

func (s *assessmentService) GetProgress(ctx context.Context, userID uint, assessmentType string) (dto.ProgressResponse, error) {
	parsed, err := parseAssessmentType(assessmentType)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	set, found, err := s.loadProgress(ctx, userID, parsed)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !found {
		set = models.AssessmentAnswerSet{UserID: userID, AssessmentType: string(parsed), ConfigVersion: scoring.ConfigVersion}
	}

	return newProgressResponse(set, parsed, found), nil
}

// SaveProgress merges partial answers into the saved set. A null value clears an answer.
// Saving against an already submitted set starts a retake from a blank sheet.
func (s *assessmentService) SaveProgress(ctx context.Context, actor ActivityActor, assessmentType string, req dto.AnswersRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressResponse{}, err
	}
	parsed, err := parseAssessmentType(assessmentType)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	set, found, err := s.loadProgress(ctx, actor.ID, parsed)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !found || set.IsSubmitted() {
		set = models.AssessmentAnswerSet{UserID: actor.ID, AssessmentType: string(parsed)}
	}

	merged := mergeAnswers(set.Answers, req.Answers)
	if _, err := scoring.ValidatePartial(parsed, merged); err != nil {
		return dto.ProgressResponse{}, err
	}

	set.Answers = datatypes.JSONMap(merged)
	set.ConfigVersion = scoring.ConfigVersion
	set.SubmittedAt = nil
	if err := s.progress.Save(ctx, &set); err != nil {
		return dto.ProgressResponse{}, err
	}

	return newProgressResponse(set, parsed, true), nil
}

// Preview scores the saved progress without storing anything.
func (s *assessmentService) Preview(ctx context.Context, userID uint, assessmentType string) (dto.AssessmentResultResponse, error) {
	parsed, err := parseAssessmentType(assessmentType)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	set, _, err := s.loadProgress(ctx, userID, parsed)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	answers, err := scoring.ValidatePartial(parsed, scoring.RawAnswers(set.Answers))
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	result, err := scoring.Preview(answers)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	return dto.NewProvisionalResultResponse(result), nil
}

// Submit validates the complete answer set (saved progress overlaid with the request), scores it
// and replaces the stored result and answers in one transaction.
func (s *assessmentService) Submit(ctx context.Context, actor ActivityActor, assessmentType string, req dto.AnswersRequest) (dto.AssessmentResultResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/leadership-assessment-api/internal/service/assessment")
	ctx, span := tracer.Start(ctx, "assessment.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user.id", int(actor.ID)),
		attribute.String("assessment.type", assessmentType),
	)

	response, err := s.submit(ctx, actor, assessmentType, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, scoring.ErrValidation) {
			outcome = "invalid"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if parsed, ok := scoring.ParseAssessmentType(assessmentType); ok {
		observability.Submissions().WithLabelValues(string(parsed), outcome).Inc()
	}

	return response, err
}

func (s *assessmentService) submit(ctx context.Context, actor ActivityActor, assessmentType string, req dto.AnswersRequest) (dto.AssessmentResultResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	parsed, err := parseAssessmentType(assessmentType)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	set, found, err := s.loadProgress(ctx, actor.ID, parsed)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}
	var base datatypes.JSONMap
	if found && !set.IsSubmitted() {
		base = set.Answers
	}
	merged := mergeAnswers(base, req.Answers)

	scored, err := scoring.ValidateAndScore(parsed, merged)
	if err != nil {
		return dto.AssessmentResultResponse{}, err
	}

	now := s.now().UTC()
	answerSet := models.AssessmentAnswerSet{
		UserID:         actor.ID,
		AssessmentType: string(parsed),
		ConfigVersion:  scoring.ConfigVersion,
		Answers:        datatypes.JSONMap(merged),
		SubmittedAt:    &now,
	}
	result := models.AssessmentResult{
		UserID:         actor.ID,
		AssessmentType: string(parsed),
		Scores:         datatypes.NewJSONType(scored.Scores),
		DominantResult: scored.DominantResult,
		OverallScore:   scored.OverallScore,
		ConfigVersion:  scoring.ConfigVersion,
		CompletedAt:    now,
	}
	if err := s.results.UpsertWithAnswers(ctx, &answerSet, &result); err != nil {
		return dto.AssessmentResultResponse{}, fmt.Errorf("store %s result: %w", parsed, err)
	}

	s.cache.Invalidate(ctx, actor.ID)

	payload := map[string]interface{}{
		"user_id":         actor.ID,
		"assessment_type": parsed,
		"scores":          scored.Scores,
		"dominant_result": scored.DominantResult,
		"overall_score":   scored.OverallScore,
		"config_version":  scoring.ConfigVersion,
		"completed_at":    now,
	}
	s.events.Publish(EventAssessmentCompleted, payload)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		SubjectID:  actor.ID,
		Action:     models.ActivityAssessmentSubmitted,
		EntityType: "assessment_result",
		Metadata:   map[string]interface{}{"assessment_type": parsed, "dominant_result": scored.DominantResult},
	})

	s.logger.Info().Uint("user_id", actor.ID).Str("assessment_type", string(parsed)).Msg("assessment submitted")

	response := dto.NewAssessmentResultResponse(result)
	response.Scores = scored.Scores
	return response, nil
}

func (s *assessmentService) ListResults(ctx context.Context, userID uint, assessmentType string) ([]dto.AssessmentResultResponse, error) {
	var filter *string
	if assessmentType != "" {
		parsed, err := parseAssessmentType(assessmentType)
		if err != nil {
			return nil, err
		}
		value := string(parsed)
		filter = &value
	}

	results, err := s.results.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewAssessmentResultResponseSlice(results), nil
}

func (s *assessmentService) Overview(ctx context.Context, userID uint) (dto.ResultsOverviewResponse, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		cached.CacheHit = true
		return cached, nil
	}

	generation, genErr := s.cache.Generation(ctx, userID)

	results, err := s.results.FindByUser(ctx, userID, nil)
	if err != nil {
		return dto.ResultsOverviewResponse{}, err
	}

	response := dto.ResultsOverviewResponse{
		UserID:  userID,
		Results: dto.NewAssessmentResultResponseSlice(results),
	}
	if s.feedback != nil {
		feedback, err := s.feedback.Feedback(ctx, userID)
		if err != nil {
			return dto.ResultsOverviewResponse{}, err
		}
		response.Feedback = feedback
	}

	if genErr == nil {
		s.cache.Set(ctx, userID, generation, response)
	}
	return response, nil
}

func (s *assessmentService) loadProgress(ctx context.Context, userID uint, assessmentType scoring.AssessmentType) (models.AssessmentAnswerSet, bool, error) {
	set, err := s.progress.Get(ctx, userID, string(assessmentType))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AssessmentAnswerSet{}, false, nil
		}
		return models.AssessmentAnswerSet{}, false, err
	}
	return set, true, nil
}

func mergeAnswers(base map[string]interface{}, updates scoring.RawAnswers) scoring.RawAnswers {
	merged := make(scoring.RawAnswers, len(base)+len(updates))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range updates {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	return merged
}

func newProgressResponse(set models.AssessmentAnswerSet, assessmentType scoring.AssessmentType, persisted bool) dto.ProgressResponse {
	answers := map[string]interface{}{}
	for key, value := range set.Answers {
		answers[key] = value
	}

	total := 0
	if catalogue, err := scoring.Catalogue(assessmentType); err == nil {
		for _, question := range catalogue.Questions {
			if question.Required {
				total++
			}
		}
	}

	answered := 0
	for key := range answers {
		if _, err := strconv.Atoi(key); err == nil {
			answered++
		}
	}

	response := dto.ProgressResponse{
		AssessmentType: string(assessmentType),
		ConfigVersion:  scoring.ConfigVersion,
		Answers:        answers,
		AnsweredCount:  answered,
		TotalQuestions: total,
		SubmittedAt:    set.SubmittedAt,
	}
	if set.ConfigVersion != "" {
		response.ConfigVersion = set.ConfigVersion
	}
	if persisted && !set.UpdatedAt.IsZero() {
		updated := set.UpdatedAt
		response.UpdatedAt = &updated
	}
	return response
}
