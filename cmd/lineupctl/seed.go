package main

import (
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pl-lineup-bot/internal/app"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
	"github.com/spf13/cobra"
)

type seedFlags struct {
	leagues       string
	lookbackDays  int
	matchesPerDay int
	workers       int
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate baselines from external sources",
	}
	cmd.AddCommand(newSeedPositionsCmd())
	return cmd
}

func newSeedPositionsCmd() *cobra.Command {
	var flags seedFlags
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Crawl recent FotMob match documents into positional baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			if err := requireDatabase(cfg); err != nil {
				return err
			}

			input := usecase.SeedInput{
				LeagueIDs:           cfg.SeedLeagueIDs,
				LookbackDays:        cfg.SeedLookbackDays,
				MatchesPerLeagueDay: cfg.SeedMatchesPerDay,
				MaxWorkers:          cfg.SeedWorkers,
			}
			if cmd.Flags().Changed("leagues") {
				if input.LeagueIDs, err = parseLeagueIDs(flags.leagues); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("lookback-days") {
				input.LookbackDays = flags.lookbackDays
			}
			if cmd.Flags().Changed("matches-per-day") {
				input.MatchesPerLeagueDay = flags.matchesPerDay
			}
			if cmd.Flags().Changed("workers") {
				input.MaxWorkers = flags.workers
			}

			ctx := cmd.Context()
			store, err := app.OpenRecordStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			services := app.NewServices(cfg, store, logger)
			result, err := app.NewPositionalSeeder(cfg, services, logger).Seed(ctx, input)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&flags.leagues, "leagues", "", "comma-separated FotMob league ids (default SEED_LEAGUE_IDS)")
	cmd.Flags().IntVar(&flags.lookbackDays, "lookback-days", 0, "days back from today to crawl (default SEED_LOOKBACK_DAYS)")
	cmd.Flags().IntVar(&flags.matchesPerDay, "matches-per-day", 0, "matches fetched per league per day (default SEED_MATCHES_PER_LEAGUE_DAY)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "concurrent league-day workers (default SEED_WORKERS)")
	return cmd
}

func parseLeagueIDs(raw string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid league id %q", part)
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one league id is required")
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	body, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return err
}
