package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

// EvaluatorRepository persists 360° evaluators and drives their token lifecycle.
type EvaluatorRepository interface {
	Create(ctx context.Context, evaluator *models.Evaluator) error
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Evaluator, error)
	ListCompletedBySubject(ctx context.Context, subjectID uint) ([]models.Evaluator, error)
	GetByToken(ctx context.Context, token string) (models.Evaluator, error)
	MarkOpened(ctx context.Context, token string, at time.Time) error
	Complete(ctx context.Context, token string, ratings map[string]int, comment string, at time.Time) (models.Evaluator, error)
	DeleteInvited(ctx context.Context, subjectID, evaluatorID uint) error
}

type evaluatorRepository struct {
	db *gorm.DB
}

// NewEvaluatorRepository instantiates a GORM-backed evaluator store.
func NewEvaluatorRepository(db *gorm.DB) EvaluatorRepository {
	return &evaluatorRepository{db: db}
}

func (r *evaluatorRepository) Create(ctx context.Context, evaluator *models.Evaluator) error {
	return r.db.WithContext(ctx).Create(evaluator).Error
}

func (r *evaluatorRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Evaluator, error) {
	var evaluators []models.Evaluator
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC").Order("id ASC").
		Find(&evaluators).Error; err != nil {
		return nil, err
	}
	return evaluators, nil
}

// ListCompletedBySubject reads the snapshot of completed submissions in a single statement so
// an aggregate never mixes rows from before and after a concurrent completion.
func (r *evaluatorRepository) ListCompletedBySubject(ctx context.Context, subjectID uint) ([]models.Evaluator, error) {
	var evaluators []models.Evaluator
	if err := r.db.WithContext(ctx).
		Where("subject_id = ? AND status = ?", subjectID, models.EvaluatorStatusCompleted).
		Order("id ASC").
		Find(&evaluators).Error; err != nil {
		return nil, err
	}
	return evaluators, nil
}

func (r *evaluatorRepository) GetByToken(ctx context.Context, token string) (models.Evaluator, error) {
	var evaluator models.Evaluator
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&evaluator).Error; err != nil {
		return models.Evaluator{}, err
	}
	return evaluator, nil
}

func (r *evaluatorRepository) MarkOpened(ctx context.Context, token string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Evaluator{}).
		Where("token = ? AND opened_at IS NULL", token).
		UpdateColumn("opened_at", at).
		Error
}

// Complete moves an invited, unexpired evaluator to completed with a single conditional
// UPDATE. When no row matches, the current row is read back inside the same transaction to
// report why: gorm.ErrRecordNotFound, scoring.ErrAlreadyCompleted or scoring.ErrTokenExpired.
func (r *evaluatorRepository) Complete(ctx context.Context, token string, ratings map[string]int, comment string, at time.Time) (models.Evaluator, error) {
	var completed models.Evaluator
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Evaluator{}).
			Where("token = ? AND status = ?", token, models.EvaluatorStatusInvited).
			Where("(expires_at IS NULL OR expires_at > ?)", at).
			Updates(map[string]interface{}{
				"status":       models.EvaluatorStatusCompleted,
				"ratings":      datatypes.NewJSONType(ratings),
				"comment":      comment,
				"completed_at": at,
				"updated_at":   at,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("token = ?", token).First(&completed).Error; err != nil {
			return err
		}

		if result.RowsAffected == 0 {
			if err := scoring.CanComplete(scoring.EvaluatorStatus(completed.Status), completed.ExpiresAt, at); err != nil {
				return err
			}
			return fmt.Errorf("evaluator %d was not completed", completed.ID)
		}
		return nil
	})
	if err != nil {
		return models.Evaluator{}, err
	}

	return completed, nil
}

// DeleteInvited removes an evaluator that has not submitted yet. Completed evaluators are part
// of the subject's aggregate and cannot be removed.
func (r *evaluatorRepository) DeleteInvited(ctx context.Context, subjectID, evaluatorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND subject_id = ? AND status = ?", evaluatorID, subjectID, models.EvaluatorStatusInvited).
			Delete(&models.Evaluator{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var existing models.Evaluator
		if err := tx.Where("id = ? AND subject_id = ?", evaluatorID, subjectID).First(&existing).Error; err != nil {
			return err
		}
		return scoring.ErrAlreadyCompleted
	})
}
