package dto

import (
	"time"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest defines filters for retrieving the audit trail.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	SubjectID  uint
	ActorID    uint
	Anonymous  *bool
	Action     string
	EntityType string
	Since      *time.Time
	Until      *time.Time
}

// ActivityResponse serializes an audit entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    *uint                  `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Anonymous  bool                   `json:"anonymous"`
	SubjectID  uint                   `json:"subject_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of audit entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a model into an activity DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}
	return ActivityResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Anonymous:  entry.IsAnonymous(),
		SubjectID:  entry.SubjectID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
