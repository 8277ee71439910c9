package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions written by the assessment and evaluator services.
const (
	ActivityAssessmentSubmitted = "assessment.submitted"
	ActivityEvaluatorInvited    = "evaluator.invited"
	ActivityEvaluatorRemoved    = "evaluator.removed"
	ActivityFeedbackCompleted   = "feedback.completed"
)

// ActivityLog is an audit entry for assessment and feedback events. ActorID is nil for
// anonymous raters acting through a feedback token; SubjectID is always the assessed user.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    *uint             `gorm:"index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	SubjectID  uint              `gorm:"not null;index:idx_activity_subject_created,priority:1" json:"subject_id"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index:idx_activity_subject_created,priority:2" json:"created_at"`
}

// IsAnonymous reports whether the entry was written through a feedback token.
func (a ActivityLog) IsAnonymous() bool {
	return a.ActorID == nil
}
