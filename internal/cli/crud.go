package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/store"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var (
	listProject string
	listType    string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List memories newest-first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		opts := store.ListOptions{ProjectID: listProject, Limit: listLimit}
		if listType != "" {
			typ, err := memory.ParseType(listType)
			if err != nil {
				return err
			}
			opts.Type = typ
		}

		memories, err := a.store.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		for _, m := range memories {
			markers := ""
			if m.IsPinned {
				markers += " [pinned]"
			}
			if m.IsFavorite {
				markers += " [favorite]"
			}
			tags := ""
			if t := m.Tags(); len(t) > 0 {
				tags = " #" + strings.Join(t, " #")
			}
			fmt.Printf("%s  %-8s %s%s%s\n", m.ID, m.Type, m.Title, tags, markers)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listProject, "project", "", "filter by project id")
	listCmd.Flags().StringVar(&listType, "type", "", "filter by memory type")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "max results")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(listCmd)
}
