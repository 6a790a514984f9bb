package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultSeedLookbackDays  = 14
	defaultSeedMatchesPerDay = 10
	defaultSeedWorkers       = 4
	maxSeedLookbackDays      = 90
)

// DefaultSeedLeagueIDs are the FotMob competitions scanned when none are given.
var DefaultSeedLeagueIDs = []int64{47, 48, 87, 55, 54, 53}

// MatchDocumentSource lists matches per league-day and serves raw match details.
type MatchDocumentSource interface {
	ListMatchIDs(ctx context.Context, leagueID int64, day time.Time) ([]int64, error)
	FetchMatchDetails(ctx context.Context, matchID int64) (map[string]any, error)
}

type SeedInput struct {
	LeagueIDs           []int64
	LookbackDays        int
	MatchesPerLeagueDay int
	MaxWorkers          int
}

type SeedResult struct {
	Units         int `json:"units"`
	FailedUnits   int `json:"failed_units"`
	Matches       int `json:"matches"`
	FailedMatches int `json:"failed_matches"`
	Observations  int `json:"observations"`
}

type PositionalSeedService struct {
	source   MatchDocumentSource
	baseline *BaselineService
	logger   *logging.Logger
	now      func() time.Time
}

func NewPositionalSeedService(source MatchDocumentSource, baseline *BaselineService, logger *logging.Logger) *PositionalSeedService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PositionalSeedService{
		source:   source,
		baseline: baseline,
		logger:   logger,
		now:      time.Now,
	}
}

func normalizeSeedInput(input SeedInput) (SeedInput, error) {
	if len(input.LeagueIDs) == 0 {
		input.LeagueIDs = append([]int64(nil), DefaultSeedLeagueIDs...)
	}
	for _, id := range input.LeagueIDs {
		if id <= 0 {
			return SeedInput{}, fmt.Errorf("%w: league id must be greater than zero, got %d", ErrInvalidInput, id)
		}
	}
	if input.LookbackDays <= 0 {
		input.LookbackDays = defaultSeedLookbackDays
	}
	if input.LookbackDays > maxSeedLookbackDays {
		return SeedInput{}, fmt.Errorf("%w: lookback days must be <= %d", ErrInvalidInput, maxSeedLookbackDays)
	}
	if input.MatchesPerLeagueDay <= 0 {
		input.MatchesPerLeagueDay = defaultSeedMatchesPerDay
	}
	if input.MaxWorkers <= 0 {
		input.MaxWorkers = defaultSeedWorkers
	}
	return input, nil
}

// Seed walks the lookback window for every league and feeds each match's
// lineup subtree to the positional extractor. Fetch failures are logged and
// counted; a store failure cancels the run.
func (s *PositionalSeedService) Seed(ctx context.Context, input SeedInput) (SeedResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PositionalSeedService.Seed")
	defer span.End()

	input, err := normalizeSeedInput(input)
	if err != nil {
		return SeedResult{}, err
	}

	var (
		units         atomic.Int32
		failedUnits   atomic.Int32
		matches       atomic.Int32
		failedMatches atomic.Int32
		observations  atomic.Int32
	)

	today := s.now().UTC()
	p := pool.New().
		WithMaxGoroutines(input.MaxWorkers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for offset := 0; offset < input.LookbackDays; offset++ {
		day := today.AddDate(0, 0, -offset)
		for _, leagueID := range input.LeagueIDs {
			leagueID := leagueID
			p.Go(func(ctx context.Context) error {
				units.Add(1)
				ids, err := s.source.ListMatchIDs(ctx, leagueID, day)
				if err != nil {
					failedUnits.Add(1)
					s.logger.WarnContext(ctx, "list league matches failed",
						"league_id", leagueID,
						"date", day.Format("2006-01-02"),
						"error", err,
					)
					return nil
				}
				if len(ids) > input.MatchesPerLeagueDay {
					ids = ids[:input.MatchesPerLeagueDay]
				}

				for _, matchID := range ids {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					matches.Add(1)
					doc, err := s.source.FetchMatchDetails(ctx, matchID)
					if err != nil {
						failedMatches.Add(1)
						s.logger.WarnContext(ctx, "fetch match details failed", "match_id", matchID, "error", err)
						continue
					}

					recorded, err := s.baseline.RecordDocument(ctx, positional.Subtree(doc, "content", "lineup"))
					if err != nil {
						return fmt.Errorf("record match_id=%d: %w", matchID, err)
					}
					observations.Add(int32(recorded.Observations))
				}
				return nil
			})
		}
	}

	result := func() SeedResult {
		return SeedResult{
			Units:         int(units.Load()),
			FailedUnits:   int(failedUnits.Load()),
			Matches:       int(matches.Load()),
			FailedMatches: int(failedMatches.Load()),
			Observations:  int(observations.Load()),
		}
	}

	if err := p.Wait(); err != nil {
		return result(), fmt.Errorf("positional seed aborted: %w", err)
	}

	out := result()
	s.logger.InfoContext(ctx, "positional seed finished",
		"units", out.Units,
		"failed_units", out.FailedUnits,
		"matches", out.Matches,
		"failed_matches", out.FailedMatches,
		"observations", out.Observations,
	)
	return out, nil
}
