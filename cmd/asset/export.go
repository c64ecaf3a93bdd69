package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reginold/asset-management/internal/cli"
	"github.com/reginold/asset-management/internal/common"
)

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reviewed merchant categories as JSON",
		Long: `Write every human-reviewed merchant and its category to a JSON file,
ready to feed other tooling.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unknown := openUnknownStore()
			reviewed := unknown.ReviewedCategories()
			if len(reviewed) == 0 {
				cmd.Println(cli.FormatWarning("No reviewed merchants to export yet."))
				return nil
			}

			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reviewed); err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}

			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return common.NewUserError(fmt.Sprintf("could not write export file %s", outPath), err)
			}
			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d merchant categories to %s", len(reviewed), outPath)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "merchant_categories_export.json", "output file")
	return cmd
}
