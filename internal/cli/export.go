package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportProject string
	exportFormat  string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export memories as JSON or markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var data []byte
		switch exportFormat {
		case "json":
			data, err = a.service.ExportJSON(cmd.Context(), exportProject)
		case "markdown", "md":
			var doc string
			doc, err = a.service.ExportMarkdown(cmd.Context(), exportProject)
			data = []byte(doc)
		default:
			return fmt.Errorf("unknown export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(exportOutput, data, 0o644)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import memories from a JSON dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.ImportJSON(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d memories (%d skipped)\n", result.Created, result.Skipped)
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "  skipped: %s\n", msg)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportProject, "project", "", "limit export to one project")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format (json or markdown)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
