package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

type scoreOutput struct {
	AssessmentType string         `json:"assessment_type"`
	ConfigVersion  string         `json:"config_version"`
	Scores         map[string]int `json:"scores"`
	DominantResult *string        `json:"dominant_result"`
	OverallScore   *int           `json:"overall_score"`
	Provisional    bool           `json:"provisional,omitempty"`
}

func newScoreCmd() *cobra.Command {
	var (
		assessmentType string
		partial        bool
	)

	cmd := &cobra.Command{
		Use:   "score [answers.json]",
		Short: "Score an answers file without touching the database",
		Long: `Reads a JSON object of question id to answer (from a file or stdin) and prints the
scored result. With --partial, unanswered questions are allowed and the result is provisional.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			}

			output, err := scoreAnswers(input, assessmentType, partial)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(output)
		},
	}

	cmd.Flags().StringVarP(&assessmentType, "type", "t", "", "assessment type (tki, wellness, self_360, mbti)")
	cmd.Flags().BoolVar(&partial, "partial", false, "score an incomplete answer set")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func scoreAnswers(r io.Reader, rawType string, partial bool) (scoreOutput, error) {
	assessmentType, ok := scoring.ParseAssessmentType(rawType)
	if !ok {
		return scoreOutput{}, fmt.Errorf("%w: %q", scoring.ErrUnsupportedType, rawType)
	}

	var raw scoring.RawAnswers
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return scoreOutput{}, fmt.Errorf("decode answers: %w", err)
	}

	var (
		result scoring.Result
		err    error
	)
	if partial {
		var answers scoring.ValidatedAnswers
		answers, err = scoring.ValidatePartial(assessmentType, raw)
		if err == nil {
			result, err = scoring.Preview(answers)
		}
	} else {
		result, err = scoring.ValidateAndScore(assessmentType, raw)
	}
	if err != nil {
		return scoreOutput{}, err
	}

	return scoreOutput{
		AssessmentType: string(result.Type),
		ConfigVersion:  scoring.ConfigVersion,
		Scores:         result.Scores,
		DominantResult: result.DominantResult,
		OverallScore:   result.OverallScore,
		Provisional:    partial,
	}, nil
}
