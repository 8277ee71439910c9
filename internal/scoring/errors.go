package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid answers")
	// ErrUnsupportedType indicates an assessment type outside the closed set.
	ErrUnsupportedType = errors.New("unsupported assessment type")
	// ErrAlreadyCompleted indicates a feedback token that has already been used.
	ErrAlreadyCompleted = errors.New("feedback already submitted")
	// ErrTokenExpired indicates a feedback token past its expiry.
	ErrTokenExpired = errors.New("feedback link expired")
)

// Reason classifies a ValidationError.
type Reason string

const (
	ReasonIncompleteAnswers Reason = "incomplete_answers"
	ReasonOutOfRange        Reason = "out_of_range"
	ReasonUnknownQuestion   Reason = "unknown_question"
	ReasonUnsupportedType   Reason = "unsupported_type"
)

// ValidationError reports why an answer set was rejected. QuestionIDs lists the offending ids.
type ValidationError struct {
	Type        AssessmentType
	Reason      Reason
	QuestionIDs []int
}

func (e *ValidationError) Error() string {
	if len(e.QuestionIDs) == 0 {
		return fmt.Sprintf("%s answers rejected: %s", e.Type, e.Reason)
	}
	ids := make([]string, 0, len(e.QuestionIDs))
	for _, id := range e.QuestionIDs {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%s answers rejected: %s (questions %s)", e.Type, e.Reason, strings.Join(ids, ","))
}

// Is lets callers match any validation failure with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return target == ErrUnsupportedType && e.Reason == ReasonUnsupportedType
}

func newValidationError(assessmentType AssessmentType, reason Reason, ids []int) *ValidationError {
	sort.Ints(ids)
	return &ValidationError{Type: assessmentType, Reason: reason, QuestionIDs: ids}
}

// CanComplete applies the evaluator lifecycle guard: only an invited, unexpired token may
// transition to completed. A nil expiresAt never expires.
func CanComplete(status EvaluatorStatus, expiresAt *time.Time, now time.Time) error {
	if status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	if status != StatusInvited {
		return fmt.Errorf("unexpected evaluator status %q", status)
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return ErrTokenExpired
	}
	return nil
}
