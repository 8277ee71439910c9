package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

// ActivityLogFilter narrows audit trail queries. ActorID and Anonymous are exclusive: entries
// written through a feedback token carry no actor, so asking for both matches nothing.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	SubjectID  *uint
	ActorID    *uint
	Anonymous  *bool
	Action     string
	EntityType string
	Since      *time.Time
	Until      *time.Time
}

// ActivityLogRepository persists audit trail events.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns a page of the audit trail, newest first, along with the unpaginated total.
func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := scopeActivity(r.db.WithContext(ctx).Model(&models.ActivityLog{}), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.ActivityLog{}, 0, nil
	}

	var entries []models.ActivityLog
	err := paginate(query, filter.Page, filter.PageSize).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func scopeActivity(query *gorm.DB, filter ActivityLogFilter) *gorm.DB {
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Anonymous != nil {
		if *filter.Anonymous {
			query = query.Where("actor_id IS NULL")
		} else {
			query = query.Where("actor_id IS NOT NULL")
		}
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at < ?", *filter.Until)
	}
	return query
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
