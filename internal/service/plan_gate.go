package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/leadership-assessment-api/internal/models"
	"github.com/noah-isme/leadership-assessment-api/internal/repository"
	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

// ErrPlanRequired indicates the caller's plan does not unlock the requested assessment.
var ErrPlanRequired = errors.New("plan upgrade required")

var planRank = map[string]int{
	models.PlanFree:  0,
	models.PlanPro:   1,
	models.PlanCoach: 2,
}

// DefaultPlanRequirements gates the 360° instrument behind the pro plan.
func DefaultPlanRequirements() map[string]string {
	return map[string]string{string(scoring.TypeSelf360): models.PlanPro}
}

// PlanGate decides whether a user's subscription unlocks an assessment type.
type PlanGate interface {
	Allow(ctx context.Context, userID uint, assessmentType scoring.AssessmentType) error
	CurrentPlan(ctx context.Context, userID uint) (string, error)
}

type planGate struct {
	subscriptions repository.SubscriptionRepository
	requirements  map[scoring.AssessmentType]string
	now           func() time.Time
}

// NewPlanGate builds a gate from "assessment type → minimum plan" requirements. Types without
// a requirement are open to every plan.
func NewPlanGate(subscriptions repository.SubscriptionRepository, requirements map[string]string) (PlanGate, error) {
	normalized := make(map[scoring.AssessmentType]string, len(requirements))
	for rawType, rawPlan := range requirements {
		assessmentType, ok := scoring.ParseAssessmentType(rawType)
		if !ok {
			return nil, fmt.Errorf("plan requirement for unknown assessment type %q", rawType)
		}
		plan := strings.ToLower(strings.TrimSpace(rawPlan))
		if _, ok := planRank[plan]; !ok {
			return nil, fmt.Errorf("plan requirement for %s names unknown plan %q", rawType, rawPlan)
		}
		normalized[assessmentType] = plan
	}

	return &planGate{
		subscriptions: subscriptions,
		requirements:  normalized,
		now:           time.Now,
	}, nil
}

func (g *planGate) Allow(ctx context.Context, userID uint, assessmentType scoring.AssessmentType) error {
	required, ok := g.requirements[assessmentType]
	if !ok || required == models.PlanFree {
		return nil
	}

	plan, err := g.CurrentPlan(ctx, userID)
	if err != nil {
		return err
	}
	if planRank[plan] < planRank[required] {
		return fmt.Errorf("%w: %s requires the %s plan", ErrPlanRequired, assessmentType, required)
	}
	return nil
}

// CurrentPlan returns the effective plan. Missing, lapsed or unknown subscriptions count as free.
func (g *planGate) CurrentPlan(ctx context.Context, userID uint) (string, error) {
	subscription, err := g.subscriptions.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PlanFree, nil
		}
		return "", err
	}
	if !subscription.IsActive(g.now()) {
		return models.PlanFree, nil
	}

	plan := strings.ToLower(strings.TrimSpace(subscription.Plan))
	if _, ok := planRank[plan]; !ok {
		return models.PlanFree, nil
	}
	return plan, nil
}
