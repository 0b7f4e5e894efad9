package gradectl

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cnec/gradeengine/internal/domain/badge"
	"github.com/cnec/gradeengine/internal/domain/grading"
)

type scoreOutput struct {
	Grade       grading.ScoreBundle     `json:"grade"`
	Recommended bool                    `json:"recommended"`
	Breakdown   []grading.CategoryScore `json:"breakdown"`
	Badges      badge.Set               `json:"badges,omitempty"`
}

func newScoreCmd() *cobra.Command {
	var (
		file     string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a creator's metrics",
		Long: `Reads creator metrics from a YAML or JSON file and prints the score
bundle. A "history" section adds badge evaluation. Use -f - for stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in ScoreInput
			if err := readYAML(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}

			b := grading.CalculateTotalScore(in.RawMetrics)
			var badges badge.Set
			if in.History != nil {
				badges = badge.Evaluate(*in.History)
			}

			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), scoreOutput{
					Grade:       b,
					Recommended: b.Recommended(),
					Breakdown:   b.Breakdown(),
					Badges:      badges,
				})
			}
			renderBundle(cmd.OutOrStdout(), b, badges)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Metrics file (YAML or JSON), - for stdin (required)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON instead of the console view")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newInitialCmd() *cobra.Command {
	var (
		capiScore    float64
		contentScore float64
		jsonMode     bool
	)

	cmd := &cobra.Command{
		Use:   "initial",
		Short: "Estimate a cold-start grade from CAPI scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if capiScore < 0 || contentScore < 0 {
				return errors.New("capi scores must not be negative")
			}
			b := grading.CalculateInitialGrade(grading.Bootstrap{
				CapiScore:        grading.Ptr(capiScore),
				CapiContentScore: grading.Ptr(contentScore),
			})
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			renderBundle(cmd.OutOrStdout(), b, nil)
			return nil
		},
	}

	cmd.Flags().Float64Var(&capiScore, "capi-score", 0, "CAPI score; zero means no signal")
	cmd.Flags().Float64Var(&contentScore, "capi-content-score", 0, "CAPI content score (70 maps to a perfect quality score)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON instead of the console view")
	return cmd
}

func newLevelsCmd() *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print the grade level table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), grading.Levels())
			}
			renderLevels(cmd.OutOrStdout(), grading.Levels())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON")
	return cmd
}

func newBadgesCmd() *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Print the badge catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), badge.Catalog())
			}
			renderCatalog(cmd.OutOrStdout(), badge.Catalog())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON")
	return cmd
}
