package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
)

// AnswerSetRepository stores in-progress answer sets for autosave.
type AnswerSetRepository interface {
	Get(ctx context.Context, userID uint, assessmentType string) (models.AssessmentAnswerSet, error)
	Save(ctx context.Context, answers *models.AssessmentAnswerSet) error
}

type answerSetRepository struct {
	db *gorm.DB
}

// NewAnswerSetRepository instantiates the repository.
func NewAnswerSetRepository(db *gorm.DB) AnswerSetRepository {
	return &answerSetRepository{db: db}
}

func (r *answerSetRepository) Get(ctx context.Context, userID uint, assessmentType string) (models.AssessmentAnswerSet, error) {
	var answers models.AssessmentAnswerSet
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_type = ?", userID, assessmentType).
		First(&answers).Error; err != nil {
		return models.AssessmentAnswerSet{}, err
	}

	return answers, nil
}

func (r *answerSetRepository) Save(ctx context.Context, answers *models.AssessmentAnswerSet) error {
	return upsertAnswerSet(r.db.WithContext(ctx), answers)
}
