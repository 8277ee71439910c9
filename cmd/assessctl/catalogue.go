package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/leadership-assessment-api/internal/scoring"
)

func newCatalogueCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "catalogue <type>",
		Short:     "Print the question catalogue of an assessment type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"tki", "wellness", "self_360", "mbti"},
		RunE: func(cmd *cobra.Command, args []string) error {
			assessmentType, ok := scoring.ParseAssessmentType(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", scoring.ErrUnsupportedType, args[0])
			}
			catalogue, err := scoring.Catalogue(assessmentType)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(catalogue)
		},
	}
}
