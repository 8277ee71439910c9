package scoring

import "strings"

// MBTIResult is an imported MBTI profile.
type MBTIResult struct {
	Code    string
	Clarity map[string]int
}

// ScoreMBTI assembles the four-letter type and maps each chosen pole to its reported clarity.
func ScoreMBTI(answers ValidatedAnswers) MBTIResult {
	var code strings.Builder
	clarity := make(map[string]int, len(mbtiDimensions))
	for _, dim := range mbtiDimensions {
		letter, ok := answers.Choices[dim.QuestionID]
		if !ok {
			code.WriteString("X")
			continue
		}
		code.WriteString(letter)
		clarity[letter] = answers.Ratings[dim.ClarityQuestionID]
	}
	return MBTIResult{Code: code.String(), Clarity: clarity}
}

func (r MBTIResult) result() Result {
	return Result{
		Type:           TypeMBTI,
		Scores:         r.Clarity,
		DominantResult: stringPtr(r.Code),
	}
}
