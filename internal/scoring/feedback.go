package scoring

// DefaultMinGroupSize is the smallest relationship group reported separately in a breakdown.
const DefaultMinGroupSize = 3

// EvaluatorAnswers is one rater's submission as seen by the aggregator. Identity is
// deliberately absent: the aggregator only needs the relationship and the ratings.
type EvaluatorAnswers struct {
	Relationship Relationship
	Status       EvaluatorStatus
	Ratings      map[int]int
}

// AggregateOptions tunes optional parts of the aggregate.
type AggregateOptions struct {
	// MinGroupSize hides relationship groups with fewer respondents, and hides the whole
	// breakdown when the unreported respondents would number fewer. Zero means DefaultMinGroupSize.
	MinGroupSize int
}

// GroupScores is the aggregate of one relationship group.
type GroupScores struct {
	Relationship    Relationship     `json:"relationship"`
	RespondentCount int              `json:"respondent_count"`
	Scores          map[Category]int `json:"scores"`
	OverallScore    int              `json:"overall_score"`
}

// FeedbackAggregate is the anonymous 360° summary for one subject.
type FeedbackAggregate struct {
	SubjectID       uint             `json:"subject_id"`
	Scores          map[Category]int `json:"scores"`
	OverallScore    int              `json:"overall_score"`
	DominantResult  Category         `json:"dominant_result"`
	RespondentCount int              `json:"respondent_count"`
	Breakdown       []GroupScores    `json:"breakdown,omitempty"`
}

// Aggregate reduces every completed evaluator submission for a subject into category
// percentages: round(100 * sum / (respondents * 5 questions * 5 points)). Entries that are not
// completed are skipped. The second return value is false when no completed submission exists,
// which callers must surface as "not yet available" rather than as a zero score.
func Aggregate(subjectID uint, evaluators []EvaluatorAnswers, opts AggregateOptions) (FeedbackAggregate, bool) {
	completed := make([]EvaluatorAnswers, 0, len(evaluators))
	for _, evaluator := range evaluators {
		if evaluator.Status == StatusCompleted {
			completed = append(completed, evaluator)
		}
	}
	if len(completed) == 0 {
		return FeedbackAggregate{}, false
	}

	overall := aggregateRatings(completed)
	aggregate := FeedbackAggregate{
		SubjectID:       subjectID,
		Scores:          overall.Scores,
		OverallScore:    overall.OverallScore,
		DominantResult:  dominantCategory(overall.Scores, FeedbackCategories()),
		RespondentCount: len(completed),
	}

	minGroup := opts.MinGroupSize
	if minGroup <= 0 {
		minGroup = DefaultMinGroupSize
	}
	groups := make(map[Relationship][]EvaluatorAnswers)
	for _, evaluator := range completed {
		groups[evaluator.Relationship] = append(groups[evaluator.Relationship], evaluator)
	}
	covered := 0
	for _, relationship := range Relationships() {
		members := groups[relationship]
		if len(members) < minGroup {
			continue
		}
		group := aggregateRatings(members)
		aggregate.Breakdown = append(aggregate.Breakdown, GroupScores{
			Relationship:    relationship,
			RespondentCount: len(members),
			Scores:          group.Scores,
			OverallScore:    group.OverallScore,
		})
		covered += len(members)
	}

	// The respondents left out of every group can be derived as overall minus the reported
	// groups, so that remainder must itself be zero or a group of at least minGroup.
	if rest := len(completed) - covered; rest > 0 && rest < minGroup {
		aggregate.Breakdown = nil
	}

	return aggregate, true
}

func aggregateRatings(respondents []EvaluatorAnswers) CategoryResult {
	order := FeedbackCategories()
	sums := make(map[Category]int, len(order))
	for _, respondent := range respondents {
		for id, rating := range respondent.Ratings {
			if category, ok := feedbackMap[id]; ok {
				sums[category] += rating
			}
		}
	}

	maxPerCategory := len(respondents) * questionsPerCategory * likertMax
	scores := make(map[Category]int, len(order))
	total := 0
	for _, category := range order {
		score := percentage(sums[category], maxPerCategory)
		scores[category] = score
		total += score
	}

	return CategoryResult{
		Scores:       scores,
		OverallScore: roundHalfUp(float64(total) / float64(len(order))),
	}
}

// dominantCategory picks the highest score; ties go to the earliest category in order.
func dominantCategory(scores map[Category]int, order []Category) Category {
	if len(order) == 0 {
		return ""
	}
	best := order[0]
	for _, category := range order[1:] {
		if scores[category] > scores[best] {
			best = category
		}
	}
	return best
}

// ScoreSelf360 scores a subject's self-assessment with the same math as a single rater.
func ScoreSelf360(answers ValidatedAnswers) CategoryResult {
	return aggregateRatings([]EvaluatorAnswers{{Status: StatusCompleted, Ratings: answers.Ratings}})
}
