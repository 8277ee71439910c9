package scoring

import "fmt"

// Score computes the result for a validated answer set.
func Score(answers ValidatedAnswers) (Result, error) {
	switch answers.Type {
	case TypeTKI:
		return ScoreTKI(answers).result(), nil
	case TypeWellness:
		return ScoreWellness(answers, wellnessMap).result(TypeWellness, nil), nil
	case TypeSelf360:
		scored := ScoreSelf360(answers)
		dominant := string(dominantCategory(scored.Scores, FeedbackCategories()))
		return scored.result(TypeSelf360, &dominant), nil
	case TypeMBTI:
		return ScoreMBTI(answers).result(), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedType, answers.Type)
	}
}

// ValidateAndScore runs the validator and scores a complete submission.
func ValidateAndScore(assessmentType AssessmentType, raw RawAnswers) (Result, error) {
	answers, err := Validate(assessmentType, raw)
	if err != nil {
		return Result{}, err
	}
	return Score(answers)
}

// Preview scores a partial answer set for display. Category percentages use the answered
// questions as denominator, so a half-finished 360° self-assessment is not dragged to zero.
func Preview(answers ValidatedAnswers) (Result, error) {
	if answers.Type != TypeSelf360 {
		return Score(answers)
	}
	scored := scoreLikert(answers.Ratings, feedbackMap, FeedbackCategories())
	dominant := string(dominantCategory(scored.Scores, FeedbackCategories()))
	return scored.result(TypeSelf360, &dominant), nil
}
