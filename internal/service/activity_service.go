package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
)

// ErrInvalidActivityFilter is returned when an audit trail query cannot match any window.
var ErrInvalidActivityFilter = errors.New("invalid activity filter")

// ActivityActor is the authenticated caller performing an action. A zero ID means an
// anonymous rater acting through a feedback token.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      ActivityActor
	SubjectID  uint
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder defines behaviour for recording audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("entity type is required")
	}

	model := models.ActivityLog{
		ActorRole:  normalizeRole(entry.Actor.Role),
		SubjectID:  entry.SubjectID,
		Action:     strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:   entry.EntityID,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}
	if entry.Actor.ID > 0 {
		actorID := entry.Actor.ID
		model.ActorID = &actorID
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		Anonymous:  req.Anonymous,
		Since:      req.Since,
		Until:      req.Until,
	}
	if req.SubjectID > 0 {
		filter.SubjectID = &req.SubjectID
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}
	if req.Since != nil && req.Until != nil && !req.Since.Before(*req.Until) {
		return dto.ActivityListResponse{}, fmt.Errorf("%w: since must be before until", ErrInvalidActivityFilter)
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: 1,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

// recordActivity writes an audit entry without failing the caller.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, entry ActivityEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
