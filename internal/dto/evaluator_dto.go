package dto

import (
	"time"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

// EvaluatorInviteRequest adds a rater to the caller's 360° feedback.
type EvaluatorInviteRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Relationship string `json:"relationship" validate:"required,oneof=manager peer direct_report other"`
}

// EvaluatorResponse is the subject-facing view of an evaluator. It never carries answers or the token.
type EvaluatorResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Relationship string     `json:"relationship"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at"`
	OpenedAt     *time.Time `json:"opened_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FeedbackFormResponse is what a rater sees when opening a feedback link.
type FeedbackFormResponse struct {
	Relationship string                    `json:"relationship"`
	Status       string                    `json:"status"`
	ExpiresAt    *time.Time                `json:"expires_at"`
	Catalogue    scoring.QuestionCatalogue `json:"catalogue"`
}

// FeedbackSubmitRequest is a rater's submission.
type FeedbackSubmitRequest struct {
	Answers scoring.RawAnswers `json:"answers" validate:"required"`
	Comment string             `json:"comment" validate:"max=2000"`
}

// FeedbackSubmitResponse acknowledges a rater's submission.
type FeedbackSubmitResponse struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

// NewEvaluatorResponse converts an evaluator model into its subject-facing DTO.
func NewEvaluatorResponse(model models.Evaluator) EvaluatorResponse {
	return EvaluatorResponse{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		Relationship: model.Relationship,
		Status:       model.Status,
		ExpiresAt:    model.ExpiresAt,
		OpenedAt:     model.OpenedAt,
		CompletedAt:  model.CompletedAt,
		CreatedAt:    model.CreatedAt,
	}
}

// NewEvaluatorResponseSlice converts evaluator models into DTOs.
func NewEvaluatorResponseSlice(items []models.Evaluator) []EvaluatorResponse {
	responses := make([]EvaluatorResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewEvaluatorResponse(item))
	}
	return responses
}
