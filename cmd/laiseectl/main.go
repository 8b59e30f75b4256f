package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/weiwei-tsao/laisee-map/apps/api/internal/platform/config"
)

func main() {
	_ = godotenv.Load(".env.local", ".env")

	rootCmd := &cobra.Command{
		Use:           "laiseectl",
		Short:         "Operator tooling for the Lai See survey API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCheckEndpointCmd(),
		newCheckFirestoreCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config load: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return cfg, logger, nil
}
