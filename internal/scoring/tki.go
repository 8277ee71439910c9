package scoring

// TKIResult holds the mode tallies of a TKI answer set.
type TKIResult struct {
	Scores   map[Mode]int
	Dominant Mode
}

// ScoreTKI counts one point per pair for the mode of the chosen statement.
// The dominant mode is the highest tally; ties resolve to the earliest mode in Modes().
func ScoreTKI(answers ValidatedAnswers) TKIResult {
	scores := make(map[Mode]int, len(Modes()))
	for _, mode := range Modes() {
		scores[mode] = 0
	}
	for _, pair := range tkiPairs {
		choice, ok := answers.Choices[pair.ID]
		if !ok {
			continue
		}
		scores[pair.Mode(choice)]++
	}

	dominant := Modes()[0]
	for _, mode := range Modes()[1:] {
		if scores[mode] > scores[dominant] {
			dominant = mode
		}
	}

	return TKIResult{Scores: scores, Dominant: dominant}
}

// Percentages scales each mode tally against the instrument maximum of 12.
func (r TKIResult) Percentages() map[Mode]int {
	out := make(map[Mode]int, len(r.Scores))
	for mode, score := range r.Scores {
		out[mode] = percentage(score, tkiModeMax)
	}
	return out
}

func (r TKIResult) result() Result {
	scores := make(map[string]int, len(r.Scores))
	for mode, score := range r.Scores {
		scores[string(mode)] = score
	}
	return Result{
		Type:           TypeTKI,
		Scores:         scores,
		DominantResult: stringPtr(string(r.Dominant)),
	}
}
