package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old memories (never pinned or favorite)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		days := pruneDays
		if days <= 0 {
			days = a.cfg.Prune.Days
		}
		if days <= 0 {
			return fmt.Errorf("no prune window configured; pass --days or set prune.days")
		}

		pruned, err := a.service.Prune(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d memories older than %d days\n", pruned, days)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "prune memories older than this many days")

	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}
