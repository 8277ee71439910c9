package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawAnswers is an answer set as received from a client: question id (decimal string) → value.
type RawAnswers map[string]interface{}

// ValidatedAnswers is an answer set that passed the validator for its assessment type.
// Choices holds categorical answers (TKI "A"/"B", MBTI pole letters); Ratings holds numeric ones.
type ValidatedAnswers struct {
	Type    AssessmentType
	Choices map[int]string
	Ratings map[int]int
}

// Validate checks that raw is a complete, well-typed answer set for assessmentType.
func Validate(assessmentType AssessmentType, raw RawAnswers) (ValidatedAnswers, error) {
	return validate(assessmentType, raw, true)
}

// ValidatePartial checks value domains only. It is used for progress autosave where
// unanswered questions are expected.
func ValidatePartial(assessmentType AssessmentType, raw RawAnswers) (ValidatedAnswers, error) {
	return validate(assessmentType, raw, false)
}

func validate(assessmentType AssessmentType, raw RawAnswers, requireComplete bool) (ValidatedAnswers, error) {
	if _, ok := ParseAssessmentType(string(assessmentType)); !ok {
		return ValidatedAnswers{}, newValidationError(assessmentType, ReasonUnsupportedType, nil)
	}

	out := ValidatedAnswers{
		Type:    assessmentType,
		Choices: make(map[int]string),
		Ratings: make(map[int]int),
	}

	var unknown, outOfRange []int
	badKey := false
	for key, value := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			badKey = true
			continue
		}
		if value == nil {
			continue
		}

		switch assessmentType {
		case TypeTKI:
			if _, ok := tkiPair(id); !ok {
				unknown = append(unknown, id)
				continue
			}
			choice, ok := parseTKIChoice(value)
			if !ok {
				outOfRange = append(outOfRange, id)
				continue
			}
			out.Choices[id] = choice
		case TypeWellness, TypeSelf360:
			if _, ok := categoryMapFor(assessmentType)[id]; !ok {
				unknown = append(unknown, id)
				continue
			}
			rating, ok := parseInteger(value)
			if !ok || rating < likertMin || rating > likertMax {
				outOfRange = append(outOfRange, id)
				continue
			}
			out.Ratings[id] = rating
		case TypeMBTI:
			if dim, ok := mbtiPreference(id); ok {
				letter, ok := parseMBTIPole(value, dim.Poles)
				if !ok {
					outOfRange = append(outOfRange, id)
					continue
				}
				out.Choices[id] = letter
				continue
			}
			if _, ok := mbtiClarity(id); ok {
				clarity, ok := parseInteger(value)
				if !ok || clarity < 0 || clarity > mbtiClarityMax {
					outOfRange = append(outOfRange, id)
					continue
				}
				out.Ratings[id] = clarity
				continue
			}
			unknown = append(unknown, id)
		}
	}

	if badKey || len(unknown) > 0 {
		return ValidatedAnswers{}, newValidationError(assessmentType, ReasonUnknownQuestion, unknown)
	}
	if len(outOfRange) > 0 {
		return ValidatedAnswers{}, newValidationError(assessmentType, ReasonOutOfRange, outOfRange)
	}

	if requireComplete {
		if missing := missingQuestions(out); len(missing) > 0 {
			return ValidatedAnswers{}, newValidationError(assessmentType, ReasonIncompleteAnswers, missing)
		}
	}

	return out, nil
}

func missingQuestions(answers ValidatedAnswers) []int {
	var missing []int
	switch answers.Type {
	case TypeTKI:
		for _, pair := range tkiPairs {
			if _, ok := answers.Choices[pair.ID]; !ok {
				missing = append(missing, pair.ID)
			}
		}
	case TypeWellness, TypeSelf360:
		for _, id := range categoryMapFor(answers.Type).QuestionIDs() {
			if _, ok := answers.Ratings[id]; !ok {
				missing = append(missing, id)
			}
		}
	case TypeMBTI:
		for _, dim := range mbtiDimensions {
			if _, ok := answers.Choices[dim.QuestionID]; !ok {
				missing = append(missing, dim.QuestionID)
			}
		}
	}
	return missing
}

func mbtiPreference(id int) (MBTIDimension, bool) {
	for _, dim := range mbtiDimensions {
		if dim.QuestionID == id {
			return dim, true
		}
	}
	return MBTIDimension{}, false
}

func mbtiClarity(id int) (MBTIDimension, bool) {
	for _, dim := range mbtiDimensions {
		if dim.ClarityQuestionID == id {
			return dim, true
		}
	}
	return MBTIDimension{}, false
}

// parseTKIChoice accepts "A"/"B" in any case, or 1/2.
func parseTKIChoice(value interface{}) (string, bool) {
	if s, ok := value.(string); ok {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "A", "1":
			return "A", true
		case "B", "2":
			return "B", true
		}
		return "", false
	}
	n, ok := parseInteger(value)
	switch {
	case !ok:
		return "", false
	case n == 1:
		return "A", true
	case n == 2:
		return "B", true
	}
	return "", false
}

func parseMBTIPole(value interface{}, poles string) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	letter := strings.ToUpper(strings.TrimSpace(s))
	if len(letter) != 1 || !strings.Contains(poles, letter) {
		return "", false
	}
	return letter, true
}

// parseInteger accepts whole JSON numbers and numeric strings.
func parseInteger(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
