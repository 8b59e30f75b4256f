package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/business/survey"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/sheets"
)

func newCheckEndpointCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "check-endpoint",
		Short: "Fetch all rows from the sheet endpoint and print a summary",
		Long: `Reads the full record set from GOOGLE_SCRIPT_URL (or --url) and reports
row count, rows without a usable amount and the overall stats.

Unlike the API, failures are reported instead of being served as an empty dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if url == "" {
				url = cfg.ScriptURL
			}

			client := sheets.New(nil, sheets.Config{URL: url, Timeout: cfg.GatewayTimeout, Logger: logger})
			start := time.Now()
			records, err := client.FetchRecords(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch records: %w", err)
			}

			missing := 0
			for _, r := range records {
				if !r.HasAmount() {
					missing++
				}
			}
			overall := survey.ComputeStats(survey.AmountsOf(records))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fetched %d rows in %s\n", len(records), time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "rows without amount: %d\n", missing)
			fmt.Fprintf(out, "overall: count=%d average=%d median=%d min=%d max=%d\n",
				overall.Count, overall.Average, overall.Median, overall.Min, overall.Max)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Override GOOGLE_SCRIPT_URL")

	return cmd
}
