package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/pl-lineup-bot/internal/config"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lineupctl",
		Short:         "Operator tooling for the lineup anomaly engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newExtractCmd(),
		newSnapshotCmd(),
	)
	return root
}

// loadRuntime reads configuration and builds the CLI logger. Logs go to
// stderr so command output on stdout stays machine-readable.
func loadRuntime() (config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogFormat, cfg.LogLevel).Named("lineupctl")
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// requireDatabase guards commands that read or write the persistent store.
func requireDatabase(cfg config.Config) error {
	if !cfg.UsesDatabase() {
		return fmt.Errorf("DB_URL is required")
	}
	return nil
}
