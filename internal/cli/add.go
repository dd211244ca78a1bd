package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/service"
)

var (
	addProject    string
	addType       string
	addTitle      string
	addContent    string
	addSource     string
	addTags       []string
	addPinned     bool
	addFavorite   bool
	addConfidence float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		typ, err := memory.ParseType(addType)
		if err != nil {
			return err
		}

		m, err := a.service.Create(cmd.Context(), service.CreateInput{
			ProjectID:  addProject,
			Type:       typ,
			Title:      addTitle,
			Content:    addContent,
			Source:     addSource,
			Tags:       addTags,
			IsPinned:   addPinned,
			IsFavorite: addFavorite,
			Confidence: addConfidence,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created %s (%s)\n", m.ID, m.Type)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addProject, "project", "", "owning project id (required)")
	addCmd.Flags().StringVar(&addType, "type", "FACT", "memory type (FACT, DECISION, SNIPPET, TASK, SUMMARY)")
	addCmd.Flags().StringVar(&addTitle, "title", "", "short title")
	addCmd.Flags().StringVar(&addContent, "content", "", "memory body")
	addCmd.Flags().StringVar(&addSource, "source", "", "where the memory came from")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma-separated tags")
	addCmd.Flags().BoolVar(&addPinned, "pin", false, "pin this memory")
	addCmd.Flags().BoolVar(&addFavorite, "favorite", false, "mark as favorite")
	addCmd.Flags().Float64Var(&addConfidence, "confidence", 0, "confidence in (0,1]")
	addCmd.MarkFlagRequired("project")

	rootCmd.AddCommand(addCmd)
}
