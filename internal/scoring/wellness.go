package scoring

// CategoryResult holds per-category percentages and their rounded mean.
type CategoryResult struct {
	Scores       map[Category]int
	OverallScore int
}

// ScoreWellness converts Likert answers into a percentage per category:
// round(100 * sum / (answered * 5)). Only answered questions count towards the denominator,
// and a category with nothing answered scores 0. The overall score is the rounded mean of
// the category percentages.
func ScoreWellness(answers ValidatedAnswers, categories CategoryMap) CategoryResult {
	return scoreLikert(answers.Ratings, categories, WellnessCategories())
}

func scoreLikert(ratings map[int]int, categories CategoryMap, order []Category) CategoryResult {
	sums := make(map[Category]int, len(order))
	counts := make(map[Category]int, len(order))
	for id, rating := range ratings {
		category, ok := categories[id]
		if !ok {
			continue
		}
		sums[category] += rating
		counts[category]++
	}

	scores := make(map[Category]int, len(order))
	total := 0
	for _, category := range order {
		score := percentage(sums[category], counts[category]*likertMax)
		scores[category] = score
		total += score
	}

	overall := 0
	if len(order) > 0 {
		overall = roundHalfUp(float64(total) / float64(len(order)))
	}

	return CategoryResult{Scores: scores, OverallScore: overall}
}

func (r CategoryResult) result(assessmentType AssessmentType, dominant *string) Result {
	scores := make(map[string]int, len(r.Scores))
	for category, score := range r.Scores {
		scores[string(category)] = score
	}
	return Result{
		Type:           assessmentType,
		Scores:         scores,
		DominantResult: dominant,
		OverallScore:   intPtr(r.OverallScore),
	}
}
