package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/service"
)

var (
	updateType       string
	updateTitle      string
	updateContent    string
	updateSource     string
	updateTags       []string
	updatePinned     bool
	updateFavorite   bool
	updateConfidence float64
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Only flags the user actually set become updates.
		var input service.UpdateInput
		if cmd.Flags().Changed("type") {
			typ, err := memory.ParseType(updateType)
			if err != nil {
				return err
			}
			input.Type = &typ
		}
		if cmd.Flags().Changed("title") {
			input.Title = &updateTitle
		}
		if cmd.Flags().Changed("content") {
			input.Content = &updateContent
		}
		if cmd.Flags().Changed("source") {
			input.Source = &updateSource
		}
		if cmd.Flags().Changed("tags") {
			input.Tags = updateTags
		}
		if cmd.Flags().Changed("pin") {
			input.IsPinned = &updatePinned
		}
		if cmd.Flags().Changed("favorite") {
			input.IsFavorite = &updateFavorite
		}
		if cmd.Flags().Changed("confidence") {
			input.Confidence = &updateConfidence
		}

		m, err := a.service.Update(cmd.Context(), args[0], input)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", m.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateType, "type", "", "memory type")
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "short title")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "memory body")
	updateCmd.Flags().StringVar(&updateSource, "source", "", "where the memory came from")
	updateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "replace tags")
	updateCmd.Flags().BoolVar(&updatePinned, "pin", false, "pin this memory")
	updateCmd.Flags().BoolVar(&updateFavorite, "favorite", false, "mark as favorite")
	updateCmd.Flags().Float64Var(&updateConfidence, "confidence", 0, "confidence in (0,1]")

	rootCmd.AddCommand(updateCmd)
}
