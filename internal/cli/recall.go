package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/pkg/retrieval"
)

var (
	recallProject string
	recallTags    []string
	recallLimit   int
	recallBudget  int
	recallExplain bool
)

var recallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Search and pack memories into a token budget",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.engine.Recall(cmd.Context(), retrieval.Options{
			Query:            strings.Join(args, " "),
			ProjectID:        recallProject,
			Tags:             recallTags,
			Limit:            orConfigured(recallLimit, a.cfg.Retrieval.Limit),
			BudgetTokens:     orConfigured(recallBudget, a.cfg.Retrieval.BudgetTokens),
			RecencyBoostDays: a.cfg.Retrieval.RecencyBoostDays,
			Explain:          recallExplain,
		})
		if err != nil {
			return err
		}

		fmt.Println(result.Packed)
		fmt.Printf("\n-- %d memories, %d chars used, %d dropped --\n",
			len(result.Memories), result.UsedChars, result.Dropped)
		if recallExplain {
			for _, e := range result.Explanations {
				fmt.Printf("%s score=%.4f kw=%.2f sem=%.2f rec=%.2f tag=%.2f\n",
					e.ID, e.Score, e.KeywordScore, e.SemanticScore, e.RecencyScore, e.TagScore)
			}
		}
		return nil
	},
}

func init() {
	recallCmd.Flags().StringVar(&recallProject, "project", "", "filter by project id")
	recallCmd.Flags().StringSliceVar(&recallTags, "tags", nil, "filter by tags")
	recallCmd.Flags().IntVar(&recallLimit, "limit", 0, "max results before packing")
	recallCmd.Flags().IntVar(&recallBudget, "budget-tokens", 0, "token budget (default from config)")
	recallCmd.Flags().BoolVar(&recallExplain, "explain", false, "show score breakdown")

	rootCmd.AddCommand(recallCmd)
}
