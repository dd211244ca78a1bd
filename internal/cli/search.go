package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/pkg/retrieval"
)

var (
	searchProject string
	searchTags    []string
	searchLimit   int
	searchExplain bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories by hybrid relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.engine.Search(cmd.Context(), retrieval.Options{
			Query:            strings.Join(args, " "),
			ProjectID:        searchProject,
			Tags:             searchTags,
			Limit:            orConfigured(searchLimit, a.cfg.Retrieval.Limit),
			RecencyBoostDays: a.cfg.Retrieval.RecencyBoostDays,
			Explain:          searchExplain,
		})
		if err != nil {
			return err
		}

		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		if len(result.Memories) == 0 {
			fmt.Println("No memories found")
			return nil
		}
		for i, m := range result.Memories {
			fmt.Printf("%d. [%s] %s (%s)\n", i+1, m.Type, m.Title, m.ID)
			if searchExplain && i < len(result.Explanations) {
				e := result.Explanations[i]
				fmt.Printf("   score=%.4f kw=%.2f sem=%.2f rec=%.2f tag=%.2f\n",
					e.Score, e.KeywordScore, e.SemanticScore, e.RecencyScore, e.TagScore)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchProject, "project", "", "filter by project id")
	searchCmd.Flags().StringSliceVar(&searchTags, "tags", nil, "filter by tags")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default from config)")
	searchCmd.Flags().BoolVar(&searchExplain, "explain", false, "show score breakdown")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output JSON")

	rootCmd.AddCommand(searchCmd)
}
