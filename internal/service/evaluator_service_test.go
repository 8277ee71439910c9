package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

func invite(t *testing.T, stack *testStack, subjectID uint, relationship string) dto.EvaluatorResponse {
	t.Helper()
	resp, err := stack.evaluators.Invite(context.Background(), ActivityActor{ID: subjectID, Role: "user"}, dto.EvaluatorInviteRequest{
		Name:         "Rater",
		Relationship: relationship,
	})
	require.NoError(t, err)
	return resp
}

func TestEvaluatorServiceInviteSanitisesAndPublishesToken(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	resp, err := stack.evaluators.Invite(ctx, ActivityActor{ID: 1, Role: "user"}, dto.EvaluatorInviteRequest{
		Name:         "<b>Alex</b> O'Neil",
		Email:        "Alex@Example.com",
		Relationship: "manager",
	})
	require.NoError(t, err)
	require.Equal(t, "Alex O'Neil", resp.Name)
	require.Equal(t, "alex@example.com", resp.Email)
	require.Equal(t, models.EvaluatorStatusInvited, resp.Status)
	require.NotNil(t, resp.ExpiresAt)
	require.Nil(t, resp.CompletedAt)

	require.Equal(t, 1, stack.publisher.count("leadership.evaluator.invited"))
	require.Contains(t, string(stack.publisher.payloads[0]), `"token":"token-1"`)

	entries, _, err := stack.activity.List(ctx, repository.ActivityLogFilter{Action: "evaluator.invited"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "***", entries[0].Metadata["email"])
}

func TestEvaluatorServiceInviteRejectsMarkupOnlyName(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.evaluators.Invite(context.Background(), ActivityActor{ID: 1}, dto.EvaluatorInviteRequest{
		Name:         "<b></b>  ",
		Relationship: "peer",
	})
	require.ErrorIs(t, err, ErrInvalidEvaluatorName)

	_, err = stack.evaluators.Invite(context.Background(), ActivityActor{ID: 1}, dto.EvaluatorInviteRequest{
		Name:         "Sam",
		Relationship: "friend",
	})
	require.Error(t, err)
}

func TestEvaluatorServiceStripsEntityEncodedMarkup(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	resp, err := stack.evaluators.Invite(ctx, ActivityActor{ID: 2, Role: "user"}, dto.EvaluatorInviteRequest{
		Name:         "&lt;script&gt;alert(1)&lt;/script&gt;Bob",
		Relationship: "peer",
	})
	require.NoError(t, err)
	require.Equal(t, "Bob", resp.Name)
	require.NotContains(t, string(stack.publisher.payloads[0]), "script")

	listed, err := stack.evaluators.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Bob", listed[0].Name)

	plain, err := stack.evaluators.Invite(ctx, ActivityActor{ID: 2, Role: "user"}, dto.EvaluatorInviteRequest{
		Name:         "Tom & Jerry",
		Relationship: "peer",
	})
	require.NoError(t, err)
	require.Equal(t, "Tom & Jerry", plain.Name)

	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{
		Answers: ratings(1, 30, float64(3)),
		Comment: "&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt; &lt;img src=x onerror=alert(1)&gt;move",
	})
	require.NoError(t, err)

	var stored models.Evaluator
	require.NoError(t, stack.db.Where("token = ?", "token-1").First(&stored).Error)
	require.Equal(t, "bold move", stored.Comment)
}

func TestEvaluatorServiceCompletesOnceAndAggregates(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		invite(t, stack, 10, "peer")
	}

	pending, err := stack.evaluators.Feedback(ctx, 10)
	require.NoError(t, err)
	require.False(t, pending.Available)
	require.Nil(t, pending.Aggregate)
	require.Equal(t, 3, pending.PendingCount)

	for _, token := range []string{"token-1", "token-2", "token-3"} {
		resp, err := stack.evaluators.Submit(ctx, token, dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(4)), Comment: "<i>Great</i> listener"})
		require.NoError(t, err)
		require.Equal(t, models.EvaluatorStatusCompleted, resp.Status)
		require.NotNil(t, resp.CompletedAt)
	}

	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(5))})
	require.ErrorIs(t, err, scoring.ErrAlreadyCompleted)

	feedback, err := stack.evaluators.Feedback(ctx, 10)
	require.NoError(t, err)
	require.True(t, feedback.Available)
	require.Equal(t, 3, feedback.RespondentCount)
	require.Zero(t, feedback.PendingCount)
	require.Equal(t, 80, feedback.Aggregate.OverallScore)
	require.Equal(t, 80, feedback.Aggregate.Scores[scoring.FeedbackLeadership])
	require.Equal(t, scoring.FeedbackCommunication, feedback.Aggregate.DominantResult)
	require.Len(t, feedback.Aggregate.Breakdown, 1)
	require.Equal(t, scoring.RelationshipPeer, feedback.Aggregate.Breakdown[0].Relationship)

	var stored models.Evaluator
	require.NoError(t, stack.db.Where("token = ?", "token-1").First(&stored).Error)
	require.Equal(t, 4, stored.Ratings.Data()["1"])
	require.Equal(t, "Great listener", stored.Comment)

	require.Equal(t, 3, stack.publisher.count("leadership.feedback.updated"))
}

func TestEvaluatorServiceRejectsInvalidAnswersWithoutCompleting(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	invite(t, stack, 12, "manager")

	_, err := stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(6))})
	require.ErrorIs(t, err, scoring.ErrValidation)

	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 12, float64(3))})
	require.ErrorIs(t, err, scoring.ErrValidation)

	var stored models.Evaluator
	require.NoError(t, stack.db.Where("token = ?", "token-1").First(&stored).Error)
	require.Equal(t, models.EvaluatorStatusInvited, stored.Status)

	_, err = stack.evaluators.Submit(ctx, "missing", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(3))})
	require.ErrorIs(t, err, ErrFeedbackTokenNotFound)
}

func TestEvaluatorServiceExpiredToken(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	invite(t, stack, 14, "direct_report")

	svc := stack.evaluators.(*evaluatorService)
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, err := stack.evaluators.Open(ctx, "token-1")
	require.ErrorIs(t, err, scoring.ErrTokenExpired)

	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(3))})
	require.ErrorIs(t, err, scoring.ErrTokenExpired)

	feedback, err := stack.evaluators.Feedback(ctx, 14)
	require.NoError(t, err)
	require.Zero(t, feedback.PendingCount)
	require.False(t, feedback.Available)
}

func TestEvaluatorServiceOpenRecordsFirstVisit(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	invite(t, stack, 16, "peer")

	form, err := stack.evaluators.Open(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, "peer", form.Relationship)
	require.Equal(t, models.EvaluatorStatusInvited, form.Status)
	require.Equal(t, scoring.TypeSelf360, form.Catalogue.Type)
	require.Len(t, form.Catalogue.Questions, 30)

	var first models.Evaluator
	require.NoError(t, stack.db.Where("token = ?", "token-1").First(&first).Error)
	require.NotNil(t, first.OpenedAt)

	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(2))})
	require.NoError(t, err)

	form, err = stack.evaluators.Open(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, models.EvaluatorStatusCompleted, form.Status)

	var second models.Evaluator
	require.NoError(t, stack.db.Where("token = ?", "token-1").First(&second).Error)
	require.True(t, first.OpenedAt.Equal(*second.OpenedAt))

	_, err = stack.evaluators.Open(ctx, "unknown")
	require.ErrorIs(t, err, ErrFeedbackTokenNotFound)
}

func TestEvaluatorServiceRemoveOnlyInvited(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	actor := ActivityActor{ID: 18, Role: "user"}

	completed := invite(t, stack, 18, "peer")
	open := invite(t, stack, 18, "other")

	_, err := stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(3))})
	require.NoError(t, err)

	require.ErrorIs(t, stack.evaluators.Remove(ctx, ActivityActor{ID: 19}, open.ID), ErrEvaluatorNotFound)
	require.NoError(t, stack.evaluators.Remove(ctx, actor, open.ID))
	require.ErrorIs(t, stack.evaluators.Remove(ctx, actor, completed.ID), scoring.ErrAlreadyCompleted)
	require.ErrorIs(t, stack.evaluators.Remove(ctx, actor, 999), ErrEvaluatorNotFound)

	remaining, err := stack.evaluators.List(ctx, 18)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, completed.ID, remaining[0].ID)
}

func TestEvaluatorServiceSubmitInvalidatesSubjectOverview(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	_, err := stack.assessments.Overview(ctx, 40)
	require.NoError(t, err)
	cached, err := stack.assessments.Overview(ctx, 40)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	invite(t, stack, 40, "manager")
	_, err = stack.evaluators.Submit(ctx, "token-1", dto.FeedbackSubmitRequest{Answers: ratings(1, 30, float64(5))})
	require.NoError(t, err)

	overview, err := stack.assessments.Overview(ctx, 40)
	require.NoError(t, err)
	require.False(t, overview.CacheHit)
	require.True(t, overview.Feedback.Available)
	require.Equal(t, 1, overview.Feedback.RespondentCount)
	require.Equal(t, 100, overview.Feedback.Aggregate.OverallScore)
	require.Empty(t, overview.Feedback.Aggregate.Breakdown)
}
