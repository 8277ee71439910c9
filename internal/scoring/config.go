package scoring

import (
	"fmt"
	"sort"
)

// ConfigVersion identifies the question tables below. Bump it whenever question ids,
// categories or pair mappings change so stored answer sets can be traced to their table.
const ConfigVersion = "2024.1"

const (
	tkiPairCount         = 30
	tkiModeMax           = 12
	likertMin            = 1
	likertMax            = 5
	questionsPerCategory = 5
	mbtiClarityMax       = 100
)

// TKIPair is one forced-choice item: statement A and statement B each load on a mode.
type TKIPair struct {
	ID int  `json:"id"`
	A  Mode `json:"a"`
	B  Mode `json:"b"`
}

// Mode returns the mode selected by the given choice ("A" or "B").
func (p TKIPair) Mode(choice string) Mode {
	if choice == "B" {
		return p.B
	}
	return p.A
}

var tkiPairs = []TKIPair{
	{1, ModeAvoiding, ModeAccommodating},
	{2, ModeCompromising, ModeCollaborating},
	{3, ModeCompeting, ModeAccommodating},
	{4, ModeCompromising, ModeAccommodating},
	{5, ModeCollaborating, ModeAvoiding},
	{6, ModeAvoiding, ModeCompeting},
	{7, ModeAvoiding, ModeCompromising},
	{8, ModeCompeting, ModeCollaborating},
	{9, ModeAvoiding, ModeCompeting},
	{10, ModeCompeting, ModeCompromising},
	{11, ModeCollaborating, ModeAccommodating},
	{12, ModeAvoiding, ModeCompromising},
	{13, ModeCompromising, ModeCompeting},
	{14, ModeCollaborating, ModeCompeting},
	{15, ModeAccommodating, ModeAvoiding},
	{16, ModeAccommodating, ModeCompeting},
	{17, ModeCompeting, ModeAvoiding},
	{18, ModeAccommodating, ModeCompromising},
	{19, ModeCollaborating, ModeAvoiding},
	{20, ModeCollaborating, ModeCompromising},
	{21, ModeAccommodating, ModeCollaborating},
	{22, ModeCompromising, ModeCompeting},
	{23, ModeCollaborating, ModeAvoiding},
	{24, ModeAccommodating, ModeCompromising},
	{25, ModeCompeting, ModeAccommodating},
	{26, ModeCompromising, ModeCollaborating},
	{27, ModeAvoiding, ModeAccommodating},
	{28, ModeCompeting, ModeCollaborating},
	{29, ModeCompromising, ModeAvoiding},
	{30, ModeAccommodating, ModeCollaborating},
}

// TKIPairs returns a copy of the forced-choice table.
func TKIPairs() []TKIPair {
	out := make([]TKIPair, len(tkiPairs))
	copy(out, tkiPairs)
	return out
}

func tkiPair(id int) (TKIPair, bool) {
	if id < 1 || id > len(tkiPairs) {
		return TKIPair{}, false
	}
	return tkiPairs[id-1], true
}

// CategoryMap assigns every Likert question id to exactly one category.
type CategoryMap map[int]Category

// QuestionIDs returns the configured question ids in ascending order.
func (m CategoryMap) QuestionIDs() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// blockCategoryMap assigns ids 1..n*len(categories) in blocks of n per category.
func blockCategoryMap(categories []Category, n int) CategoryMap {
	out := make(CategoryMap, len(categories)*n)
	for idx, category := range categories {
		for q := 1; q <= n; q++ {
			out[idx*n+q] = category
		}
	}
	return out
}

var (
	wellnessMap = blockCategoryMap(WellnessCategories(), questionsPerCategory)
	feedbackMap = blockCategoryMap(FeedbackCategories(), questionsPerCategory)
)

// WellnessCategoryMap returns the wellness question → category table.
func WellnessCategoryMap() CategoryMap {
	return cloneCategoryMap(wellnessMap)
}

// FeedbackCategoryMap returns the 360° question → category table shared by self and evaluator forms.
func FeedbackCategoryMap() CategoryMap {
	return cloneCategoryMap(feedbackMap)
}

func cloneCategoryMap(in CategoryMap) CategoryMap {
	out := make(CategoryMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MBTIDimension describes one preference pair of the MBTI import form.
type MBTIDimension struct {
	QuestionID        int    `json:"question_id"`
	ClarityQuestionID int    `json:"clarity_question_id"`
	Poles             string `json:"poles"`
}

var mbtiDimensions = []MBTIDimension{
	{QuestionID: 1, ClarityQuestionID: 5, Poles: "EI"},
	{QuestionID: 2, ClarityQuestionID: 6, Poles: "SN"},
	{QuestionID: 3, ClarityQuestionID: 7, Poles: "TF"},
	{QuestionID: 4, ClarityQuestionID: 8, Poles: "JP"},
}

// MBTIDimensions returns the MBTI import layout.
func MBTIDimensions() []MBTIDimension {
	out := make([]MBTIDimension, len(mbtiDimensions))
	copy(out, mbtiDimensions)
	return out
}

// Question is a catalogue entry describing how one question id is scored.
type Question struct {
	ID       int      `json:"id"`
	Category Category `json:"category,omitempty"`
	Pair     *TKIPair `json:"pair,omitempty"`
	Min      int      `json:"min,omitempty"`
	Max      int      `json:"max,omitempty"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

// QuestionCatalogue is the versioned question layout of one instrument.
type QuestionCatalogue struct {
	Type      AssessmentType `json:"assessment_type"`
	Version   string         `json:"version"`
	Questions []Question     `json:"questions"`
}

// Catalogue returns the question layout for an assessment type.
func Catalogue(assessmentType AssessmentType) (QuestionCatalogue, error) {
	catalogue := QuestionCatalogue{Type: assessmentType, Version: ConfigVersion}

	switch assessmentType {
	case TypeTKI:
		for _, pair := range TKIPairs() {
			pair := pair
			catalogue.Questions = append(catalogue.Questions, Question{
				ID:       pair.ID,
				Pair:     &pair,
				Options:  []string{"A", "B"},
				Required: true,
			})
		}
	case TypeWellness, TypeSelf360:
		categories := categoryMapFor(assessmentType)
		for _, id := range categories.QuestionIDs() {
			catalogue.Questions = append(catalogue.Questions, Question{
				ID:       id,
				Category: categories[id],
				Min:      likertMin,
				Max:      likertMax,
				Required: true,
			})
		}
	case TypeMBTI:
		for _, dim := range mbtiDimensions {
			catalogue.Questions = append(catalogue.Questions, Question{
				ID:       dim.QuestionID,
				Options:  []string{dim.Poles[:1], dim.Poles[1:]},
				Required: true,
			})
		}
		for _, dim := range mbtiDimensions {
			catalogue.Questions = append(catalogue.Questions, Question{
				ID:  dim.ClarityQuestionID,
				Min: 0,
				Max: mbtiClarityMax,
			})
		}
	default:
		return QuestionCatalogue{}, fmt.Errorf("%w: %q", ErrUnsupportedType, assessmentType)
	}

	return catalogue, nil
}

func categoryMapFor(assessmentType AssessmentType) CategoryMap {
	if assessmentType == TypeWellness {
		return wellnessMap
	}
	return feedbackMap
}
