package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
	"github.com/mhalvorsen/enrichmap/pkg/export"
	"github.com/mhalvorsen/enrichmap/pkg/network"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
)

// rankCommand creates the rank command, which scores a graph and displays
// features ordered by how many neighborhoods they significantly enrich.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		featurePaths []string
		radius       int
		permutations int
		alpha        float64
		seed         uint64
		top          int
		interactive  bool
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "rank <graph.json>",
		Short: "Rank features by significant neighborhood count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(featurePaths) == 0 {
				return errors.New(errors.ErrCodeInvalidConfig, "no feature files given (use --features)")
			}

			g, err := network.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			m, err := loadFeatures(featurePaths)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{
				Radius:         radius,
				Permutations:   permutations,
				Alpha:          alpha,
				Seed:           seed,
				SkipProjection: true,
				Logger:         c.Logger,
			}

			sp := newSpinnerWithContext(ctx, "Scoring features")
			sp.Start()
			result, err := runner.Execute(ctx, g, m, opts)
			if err != nil {
				sp.StopWithError("Scoring failed")
				return err
			}
			sp.Stop()

			rankings := export.RankFeatures(result.Enrichment)
			if top > 0 && top < len(rankings) {
				rankings = rankings[:top]
			}

			if interactive {
				model := NewFeatureListModel(rankings, result.Enrichment)
				_, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
				return err
			}

			printRankingTable(rankings)
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.FeatureCount, result.CacheInfo.ScoreHit)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&featurePaths, "features", "f", nil, "feature matrix CSV files")
	cmd.Flags().IntVarP(&radius, "radius", "r", pipeline.DefaultRadius, "neighborhood radius in hops")
	cmd.Flags().IntVarP(&permutations, "permutations", "p", 0, "permutation count for the null model")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "significance threshold for FDR correction")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 draws a fresh seed)")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "show only the top N features")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the ranking in an interactive list")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")

	return cmd
}

// printRankingTable renders the feature ranking as a styled table.
func printRankingTable(rankings []export.FeatureRanking) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(rankings))
	for i, r := range rankings {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			r.Feature,
			fmt.Sprintf("%d", r.SignificantNodes),
			formatQ(r.MinQ),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Feature", "Significant", "Min q").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rankings) && rankings[row].SignificantNodes > 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})

	fmt.Println(t.Render())
}
