package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluator status values.
const (
	EvaluatorStatusInvited   = "invited"
	EvaluatorStatusCompleted = "completed"
)

// Evaluator is an invited rater for a subject's 360° feedback. The token is the only
// credential the rater holds and is single-use.
type Evaluator struct {
	ID           uint                               `gorm:"primaryKey" json:"id"`
	SubjectID    uint                               `gorm:"not null;index" json:"subject_id"`
	Name         string                             `gorm:"size:255;not null" json:"name"`
	Email        string                             `gorm:"size:255" json:"email"`
	Relationship string                             `gorm:"size:32;not null" json:"relationship"`
	Token        string                             `gorm:"size:128;not null;uniqueIndex" json:"-"`
	Status       string                             `gorm:"size:32;not null;index" json:"status"`
	Ratings      datatypes.JSONType[map[string]int] `gorm:"type:json" json:"-"`
	Comment      string                             `gorm:"type:text" json:"-"`
	ExpiresAt    *time.Time                         `json:"expires_at"`
	OpenedAt     *time.Time                         `json:"opened_at"`
	CompletedAt  *time.Time                         `json:"completed_at"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

// IsCompleted reports whether the evaluator already submitted feedback.
func (e Evaluator) IsCompleted() bool {
	return e.Status == EvaluatorStatusCompleted
}

// IsExpired reports whether the token expired at the reference time.
func (e Evaluator) IsExpired(reference time.Time) bool {
	return e.ExpiresAt != nil && !reference.Before(*e.ExpiresAt)
}
