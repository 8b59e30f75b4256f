package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	firestoreclient "github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/firestore"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/repository"
)

func newCheckFirestoreCmd() *cobra.Command {
	var history int

	cmd := &cobra.Command{
		Use:   "check-firestore",
		Short: "Verify Firestore credentials and print the latest stats snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			client, source, err := firestoreclient.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("firestore init: %w", err)
			}
			defer client.Close()

			if err := firestoreclient.Ping(ctx, client); err != nil {
				return fmt.Errorf("firestore ping: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "connected to project %s using %s credentials\n", cfg.FirebaseProjectID, source)

			repo := repository.NewSnapshotRepository(client)
			latest, err := repo.Latest(ctx)
			switch {
			case errors.Is(err, repository.ErrSnapshotNotFound):
				fmt.Fprintln(out, "no snapshot saved yet")
				return nil
			case err != nil:
				return err
			}

			data, err := json.MarshalIndent(latest, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			fmt.Fprintln(out, string(data))

			if history > 0 {
				snaps, err := repo.History(ctx, history)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n=== last %d snapshots ===\n", len(snaps))
				for _, s := range snaps {
					fmt.Fprintf(out, "%s  rows=%d  count=%d  average=%d\n",
						s.ID, s.SourceRows, s.Summary.Overall.Count, s.Summary.Overall.Average)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&history, "history", 0, "Also list this many dated snapshots")

	return cmd
}
