package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/app"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/spf13/cobra"
)

type snapshotOutput struct {
	Season     string `json:"season"`
	Gameweek   int    `json:"gameweek"`
	Players    int    `json:"players"`
	Fixtures   int    `json:"fixtures"`
	Lineups    int    `json:"lineups"`
	CapturedAt string `json:"captured_at"`
}

func toSnapshotOutput(s snapshot.Snapshot) snapshotOutput {
	return snapshotOutput{
		Season:     s.Season,
		Gameweek:   s.Gameweek,
		Players:    len(s.Tables.Players),
		Fixtures:   len(s.Tables.Fixtures),
		Lineups:    len(s.Tables.Lineups),
		CapturedAt: s.CapturedAt.UTC().Format(time.RFC3339),
	}
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect historical gameweek snapshots",
	}
	cmd.AddCommand(newSnapshotShowCmd(), newSnapshotListCmd())
	return cmd
}

func newSnapshotShowCmd() *cobra.Command {
	var (
		season string
		week   int
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the summary of one stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(season) == "" {
				return fmt.Errorf("--season is required")
			}
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			if err := requireDatabase(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := app.OpenRecordStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := app.NewServices(cfg, store, logger).Snapshot.Get(ctx, season, week)
			if err != nil {
				return err
			}
			return printJSON(cmd, toSnapshotOutput(snap))
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "season label, e.g. 2025/26")
	cmd.Flags().IntVar(&week, "gameweek", 0, "gameweek number (1-38)")
	_ = cmd.MarkFlagRequired("gameweek")
	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot weeks for a season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			if err := requireDatabase(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := app.OpenRecordStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			keys, err := app.NewServices(cfg, store, logger).Snapshot.ListKeys(ctx, season)
			if err != nil {
				return err
			}
			weeks := make([]int, 0, len(keys))
			for _, key := range keys {
				weeks = append(weeks, key.Gameweek)
			}
			return printJSON(cmd, map[string]any{"season": season, "gameweeks": weeks})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "season label, e.g. 2025/26")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}
