package dto

import (
	"time"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

// AnswersRequest carries raw answers keyed by question id for autosave or submission.
type AnswersRequest struct {
	Answers scoring.RawAnswers `json:"answers" validate:"required"`
}

// ProgressResponse describes a saved, possibly incomplete, answer set.
type ProgressResponse struct {
	AssessmentType string                 `json:"assessment_type"`
	ConfigVersion  string                 `json:"config_version"`
	Answers        map[string]interface{} `json:"answers"`
	AnsweredCount  int                    `json:"answered_count"`
	TotalQuestions int                    `json:"total_questions"`
	SubmittedAt    *time.Time             `json:"submitted_at"`
	UpdatedAt      *time.Time             `json:"updated_at"`
}

// AssessmentResultResponse is the read model of a scored assessment.
type AssessmentResultResponse struct {
	AssessmentType string         `json:"assessment_type"`
	Scores         map[string]int `json:"scores"`
	DominantResult *string        `json:"dominant_result"`
	OverallScore   *int           `json:"overall_score"`
	ConfigVersion  string         `json:"config_version"`
	CompletedAt    *time.Time     `json:"completed_at"`
	Provisional    bool           `json:"provisional,omitempty"`
}

// FeedbackResponse reports the subject's 360° aggregate. Aggregate is nil until at least one
// evaluator has completed, which is distinct from an aggregate that averages to zero.
type FeedbackResponse struct {
	Available       bool                       `json:"available"`
	RespondentCount int                        `json:"respondent_count"`
	PendingCount    int                        `json:"pending_count"`
	Aggregate       *scoring.FeedbackAggregate `json:"aggregate,omitempty"`
}

// ResultsOverviewResponse bundles every result of a user with the 360° aggregate.
type ResultsOverviewResponse struct {
	UserID   uint                       `json:"user_id"`
	Results  []AssessmentResultResponse `json:"results"`
	Feedback FeedbackResponse           `json:"feedback"`
	CacheHit bool                       `json:"-"`
}

// NewAssessmentResultResponse converts a stored result into its read model.
func NewAssessmentResultResponse(model models.AssessmentResult) AssessmentResultResponse {
	completedAt := model.CompletedAt
	scores := model.Scores.Data()
	if scores == nil {
		scores = map[string]int{}
	}
	return AssessmentResultResponse{
		AssessmentType: model.AssessmentType,
		Scores:         scores,
		DominantResult: model.DominantResult,
		OverallScore:   model.OverallScore,
		ConfigVersion:  model.ConfigVersion,
		CompletedAt:    &completedAt,
	}
}

// NewAssessmentResultResponseSlice converts stored results into read models.
func NewAssessmentResultResponseSlice(items []models.AssessmentResult) []AssessmentResultResponse {
	responses := make([]AssessmentResultResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssessmentResultResponse(item))
	}
	return responses
}

// NewProvisionalResultResponse wraps a preview score that has not been stored.
func NewProvisionalResultResponse(result scoring.Result) AssessmentResultResponse {
	return AssessmentResultResponse{
		AssessmentType: string(result.Type),
		Scores:         result.Scores,
		DominantResult: result.DominantResult,
		OverallScore:   result.OverallScore,
		ConfigVersion:  scoring.ConfigVersion,
		Provisional:    true,
	}
}
