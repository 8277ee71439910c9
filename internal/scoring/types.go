// Package scoring turns raw assessment answers into category scores, dominant results and
// multi-rater aggregates. Everything in this package is pure: no I/O, no clocks, no globals
// that change after init.
package scoring

import "strings"

// AssessmentType identifies one of the supported instruments.
type AssessmentType string

const (
	TypeTKI      AssessmentType = "tki"
	TypeWellness AssessmentType = "wellness"
	TypeSelf360  AssessmentType = "self_360"
	TypeMBTI     AssessmentType = "mbti"
)

// AssessmentTypes lists the closed set of instruments in a stable order.
func AssessmentTypes() []AssessmentType {
	return []AssessmentType{TypeTKI, TypeWellness, TypeSelf360, TypeMBTI}
}

// ParseAssessmentType normalises user input into a known AssessmentType.
func ParseAssessmentType(value string) (AssessmentType, bool) {
	candidate := AssessmentType(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range AssessmentTypes() {
		if candidate == known {
			return candidate, true
		}
	}
	return "", false
}

// Mode is a TKI conflict-handling mode.
type Mode string

const (
	ModeCompeting     Mode = "competing"
	ModeCollaborating Mode = "collaborating"
	ModeCompromising  Mode = "compromising"
	ModeAvoiding      Mode = "avoiding"
	ModeAccommodating Mode = "accommodating"
)

// Modes returns the canonical mode order. Ties for the dominant mode go to the earliest entry.
func Modes() []Mode {
	return []Mode{ModeCompeting, ModeCollaborating, ModeCompromising, ModeAvoiding, ModeAccommodating}
}

// Category names a scored dimension of the wellness or 360° instruments.
type Category string

const (
	WellnessSubstances Category = "substances"
	WellnessExercise   Category = "exercise"
	WellnessNutrition  Category = "nutrition"
	WellnessSleep      Category = "sleep"
	WellnessSocial     Category = "social"
	WellnessStress     Category = "stress"
)

// WellnessCategories returns the six wellness categories in canonical order.
func WellnessCategories() []Category {
	return []Category{WellnessSubstances, WellnessExercise, WellnessNutrition, WellnessSleep, WellnessSocial, WellnessStress}
}

const (
	FeedbackCommunication         Category = "communication"
	FeedbackLeadership            Category = "leadership"
	FeedbackTeamwork              Category = "teamwork"
	FeedbackDecisionMaking        Category = "decision_making"
	FeedbackEmotionalIntelligence Category = "emotional_intelligence"
	FeedbackAccountability        Category = "accountability"
)

// FeedbackCategories returns the six 360° categories in canonical order. Ties for the
// dominant category go to the earliest entry.
func FeedbackCategories() []Category {
	return []Category{
		FeedbackCommunication,
		FeedbackLeadership,
		FeedbackTeamwork,
		FeedbackDecisionMaking,
		FeedbackEmotionalIntelligence,
		FeedbackAccountability,
	}
}

// Relationship describes how an evaluator knows the subject.
type Relationship string

const (
	RelationshipManager      Relationship = "manager"
	RelationshipPeer         Relationship = "peer"
	RelationshipDirectReport Relationship = "direct_report"
	RelationshipOther        Relationship = "other"
)

// Relationships returns every relationship in display order.
func Relationships() []Relationship {
	return []Relationship{RelationshipManager, RelationshipPeer, RelationshipDirectReport, RelationshipOther}
}

// EvaluatorStatus is the durable lifecycle state of an evaluator's feedback token.
type EvaluatorStatus string

const (
	StatusInvited   EvaluatorStatus = "invited"
	StatusCompleted EvaluatorStatus = "completed"
)

// Result is the scored outcome of one assessment submission.
type Result struct {
	Type           AssessmentType `json:"assessment_type"`
	Scores         map[string]int `json:"scores"`
	DominantResult *string        `json:"dominant_result"`
	OverallScore   *int           `json:"overall_score"`
}

func stringPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}

// roundHalfUp rounds non-negative ratios to the nearest integer, halves going up.
func roundHalfUp(value float64) int {
	if value < 0 {
		return -roundHalfUp(-value)
	}
	return int(value + 0.5)
}

// percentage returns round(100*sum/max) and 0 when max is not positive.
func percentage(sum, max int) int {
	if max <= 0 {
		return 0
	}
	return roundHalfUp(100 * float64(sum) / float64(max))
}
