package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

var userTypeConflict = []clause.Column{{Name: "user_id"}, {Name: "assessment_type"}}

// ResultRepository persists scored assessment results with create-or-replace semantics
// keyed by (user, assessment type).
type ResultRepository interface {
	Upsert(ctx context.Context, result *models.AssessmentResult) error
	UpsertWithAnswers(ctx context.Context, answers *models.AssessmentAnswerSet, result *models.AssessmentResult) error
	FindByUser(ctx context.Context, userID uint, assessmentType *string) ([]models.AssessmentResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates a GORM-backed result store.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Upsert(ctx context.Context, result *models.AssessmentResult) error {
	return upsertResult(r.db.WithContext(ctx), result)
}

// UpsertWithAnswers stores the final answer set and its result atomically.
func (r *resultRepository) UpsertWithAnswers(ctx context.Context, answers *models.AssessmentAnswerSet, result *models.AssessmentResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertAnswerSet(tx, answers); err != nil {
			return err
		}
		return upsertResult(tx, result)
	})
}

func (r *resultRepository) FindByUser(ctx context.Context, userID uint, assessmentType *string) ([]models.AssessmentResult, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if assessmentType != nil {
		query = query.Where("assessment_type = ?", *assessmentType)
	}

	var results []models.AssessmentResult
	if err := query.Order("assessment_type ASC").Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func upsertResult(db *gorm.DB, result *models.AssessmentResult) error {
	return db.Clauses(clause.OnConflict{
		Columns:   userTypeConflict,
		DoUpdates: clause.AssignmentColumns(models.ResultUpsertColumns),
	}).Create(result).Error
}

func upsertAnswerSet(db *gorm.DB, answers *models.AssessmentAnswerSet) error {
	return db.Clauses(clause.OnConflict{
		Columns:   userTypeConflict,
		DoUpdates: clause.AssignmentColumns([]string{"answers", "config_version", "submitted_at", "updated_at"}),
	}).Create(answers).Error
}
