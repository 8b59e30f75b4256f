package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/report"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/sheets"
)

func newExportCmd() *cobra.Command {
	var (
		outPath  string
		criteria survey.Criteria
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export survey records and per-district stats to an xlsx workbook",
		Long: `Fetches every record from the sheet endpoint, applies the optional cohort
filters and writes a workbook with a Records sheet and a Districts sheet.

Example: laiseectl export --out laisee.xlsx --role giver --age-group 23-30歲`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			client := sheets.New(nil, sheets.Config{URL: cfg.ScriptURL, Timeout: cfg.GatewayTimeout, Logger: logger})
			records, err := client.FetchRecords(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch records: %w", err)
			}
			records = survey.FilterRecords(records, criteria)

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := report.WriteWorkbook(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "laisee-export.xlsx", "Output xlsx path")
	cmd.Flags().StringVar(&criteria.Role, "role", "", "Filter by role (giver|receiver)")
	cmd.Flags().StringVar(&criteria.AgeGroup, "age-group", "", "Filter by age group")
	cmd.Flags().StringVar(&criteria.Relation, "relation", "", "Filter by relation")
	cmd.Flags().StringVar(&criteria.District, "district", "", "Filter by district")

	return cmd
}
