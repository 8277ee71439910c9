package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssessmentAnswerSet stores a user's in-progress or submitted answers for one instrument.
// There is at most one row per (user, assessment type).
type AssessmentAnswerSet struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;uniqueIndex:idx_answer_sets_user_type" json:"user_id"`
	AssessmentType string            `gorm:"size:32;not null;uniqueIndex:idx_answer_sets_user_type" json:"assessment_type"`
	ConfigVersion  string            `gorm:"size:16;not null" json:"config_version"`
	Answers        datatypes.JSONMap `gorm:"type:json" json:"answers"`
	SubmittedAt    *time.Time        `json:"submitted_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// IsSubmitted reports whether the answer set was finalised by a submission.
func (a AssessmentAnswerSet) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// AssessmentResult is the scored outcome for one (user, assessment type). Retaking an
// assessment replaces the row wholesale.
type AssessmentResult struct {
	ID             uint                               `gorm:"primaryKey" json:"id"`
	UserID         uint                               `gorm:"not null;uniqueIndex:idx_results_user_type" json:"user_id"`
	AssessmentType string                             `gorm:"size:32;not null;uniqueIndex:idx_results_user_type" json:"assessment_type"`
	Scores         datatypes.JSONType[map[string]int] `gorm:"type:json" json:"scores"`
	DominantResult *string                            `gorm:"size:64" json:"dominant_result"`
	OverallScore   *int                               `json:"overall_score"`
	ConfigVersion  string                             `gorm:"size:16;not null" json:"config_version"`
	CompletedAt    time.Time                          `gorm:"not null" json:"completed_at"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// ResultUpsertColumns lists every column replaced when a result is retaken.
var ResultUpsertColumns = []string{"scores", "dominant_result", "overall_score", "config_version", "completed_at", "updated_at"}
