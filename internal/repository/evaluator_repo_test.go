package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

func seedEvaluator(t *testing.T, repo EvaluatorRepository, subjectID uint, token string, expiresAt *time.Time) models.Evaluator {
	t.Helper()
	evaluator := models.Evaluator{
		SubjectID:    subjectID,
		Name:         "Rater " + token,
		Relationship: string(scoring.RelationshipPeer),
		Token:        token,
		Status:       models.EvaluatorStatusInvited,
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, repo.Create(context.Background(), &evaluator))
	return evaluator
}

func TestEvaluatorRepositoryCompleteOnce(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewEvaluatorRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedEvaluator(t, repo, 1, "tok-1", nil)

	completed, err := repo.Complete(ctx, "tok-1", map[string]int{"1": 5, "2": 4}, "keep going", now)
	require.NoError(t, err)
	require.True(t, completed.IsCompleted())
	require.NotNil(t, completed.CompletedAt)
	require.Equal(t, map[string]int{"1": 5, "2": 4}, completed.Ratings.Data())

	_, err = repo.Complete(ctx, "tok-1", map[string]int{"1": 1, "2": 1}, "overwrite", now.Add(time.Minute))
	require.ErrorIs(t, err, scoring.ErrAlreadyCompleted)

	stored, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"1": 5, "2": 4}, stored.Ratings.Data(), "second submission must not mutate answers")
	require.Equal(t, "keep going", stored.Comment)
}

func TestEvaluatorRepositoryCompleteUnknownAndExpired(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewEvaluatorRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Complete(ctx, "missing", map[string]int{"1": 3}, "", now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	expired := now.Add(-48 * time.Hour)
	seedEvaluator(t, repo, 1, "tok-old", &expired)

	_, err = repo.Complete(ctx, "tok-old", map[string]int{"1": 3}, "", now)
	require.ErrorIs(t, err, scoring.ErrTokenExpired)

	stored, err := repo.GetByToken(ctx, "tok-old")
	require.NoError(t, err)
	require.Equal(t, models.EvaluatorStatusInvited, stored.Status)

	future := now.Add(48 * time.Hour)
	seedEvaluator(t, repo, 1, "tok-live", &future)
	_, err = repo.Complete(ctx, "tok-live", map[string]int{"1": 3}, "", now)
	require.NoError(t, err)
}

func TestEvaluatorRepositoryListCompletedExcludesInvited(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewEvaluatorRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedEvaluator(t, repo, 1, "a", nil)
	seedEvaluator(t, repo, 1, "b", nil)
	seedEvaluator(t, repo, 2, "c", nil)

	_, err := repo.Complete(ctx, "a", map[string]int{"1": 4}, "", now)
	require.NoError(t, err)
	_, err = repo.Complete(ctx, "c", map[string]int{"1": 2}, "", now)
	require.NoError(t, err)

	completed, err := repo.ListCompletedBySubject(ctx, 1)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "a", completed[0].Token)

	all, err := repo.ListBySubject(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEvaluatorRepositoryMarkOpenedKeepsFirstVisit(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewEvaluatorRepository(db)
	ctx := context.Background()

	seedEvaluator(t, repo, 1, "tok", nil)
	first := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.MarkOpened(ctx, "tok", first))
	require.NoError(t, repo.MarkOpened(ctx, "tok", first.Add(time.Hour)))

	stored, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, stored.OpenedAt)
	require.True(t, stored.OpenedAt.Equal(first))
	require.Equal(t, models.EvaluatorStatusInvited, stored.Status)
}

func TestEvaluatorRepositoryDeleteInvitedOnly(t *testing.T) {
	db := setupAssessmentTestDB(t)
	repo := NewEvaluatorRepository(db)
	ctx := context.Background()

	invited := seedEvaluator(t, repo, 1, "x", nil)
	done := seedEvaluator(t, repo, 1, "y", nil)
	_, err := repo.Complete(ctx, "y", map[string]int{"1": 5}, "", time.Now().UTC())
	require.NoError(t, err)

	require.ErrorIs(t, repo.DeleteInvited(ctx, 2, invited.ID), gorm.ErrRecordNotFound, "other subjects cannot remove it")
	require.NoError(t, repo.DeleteInvited(ctx, 1, invited.ID))
	require.ErrorIs(t, repo.DeleteInvited(ctx, 1, invited.ID), gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.DeleteInvited(ctx, 1, done.ID), scoring.ErrAlreadyCompleted)

	remaining, err := repo.ListBySubject(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
