package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type IngestGameweekInput struct {
	Season   string
	Gameweek int
	Tables   gameweek.Tables
}

type IngestGameweekResult struct {
	Season     string         `json:"season"`
	Gameweek   int            `json:"gameweek"`
	CapturedAt time.Time      `json:"captured_at"`
	Players    int            `json:"players"`
	Fixtures   int            `json:"fixtures"`
	Lineups    int            `json:"lineups"`
	Dispatch   DispatchResult `json:"dispatch"`
}

// IngestionService is the store side of the weekly refresh: it replaces the
// live tables, snapshots them and optionally queues per-match alert jobs.
type IngestionService struct {
	writer     gameweek.Writer
	snapshots  *SnapshotService
	dispatcher *AlertDispatchService
	logger     *logging.Logger
}

// NewIngestionService wires the refresh; dispatcher may be nil.
func NewIngestionService(
	writer gameweek.Writer,
	snapshots *SnapshotService,
	dispatcher *AlertDispatchService,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		writer:     writer,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *IngestionService) ApplyGameweek(ctx context.Context, input IngestGameweekInput) (IngestGameweekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.ApplyGameweek")
	defer span.End()

	input.Season = strings.TrimSpace(input.Season)
	key := snapshot.Key{Season: input.Season, Gameweek: input.Gameweek}
	if err := key.Validate(); err != nil {
		return IngestGameweekResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(input.Tables.Players) == 0 {
		return IngestGameweekResult{}, fmt.Errorf("%w: players are required", ErrInvalidInput)
	}
	if err := input.Tables.Validate(); err != nil {
		return IngestGameweekResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.writer.ReplaceLive(ctx, input.Tables); err != nil {
		return IngestGameweekResult{}, storeError("replace live tables", err)
	}

	item, err := s.snapshots.Write(ctx, WriteSnapshotInput{
		Season:   input.Season,
		Gameweek: input.Gameweek,
		Tables:   input.Tables,
	})
	if err != nil {
		return IngestGameweekResult{}, err
	}

	result := IngestGameweekResult{
		Season:     item.Season,
		Gameweek:   item.Gameweek,
		CapturedAt: item.CapturedAt,
		Players:    len(input.Tables.Players),
		Fixtures:   len(input.Tables.Fixtures),
		Lineups:    len(input.Tables.Lineups),
	}

	if s.dispatcher != nil {
		jobs := matchAlertJobs(input)
		dispatch, err := s.dispatcher.DispatchMatchAlerts(ctx, jobs)
		if err != nil {
			s.logger.WarnContext(ctx, "match alert dispatch failed", "gameweek", input.Gameweek, "error", err)
		}
		result.Dispatch = dispatch
	}

	s.logger.InfoContext(ctx, "gameweek ingested",
		"season", input.Season,
		"gameweek", input.Gameweek,
		"players", result.Players,
		"fixtures", result.Fixtures,
		"lineups", result.Lineups,
		"alert_jobs", result.Dispatch.Queued,
	)
	return result, nil
}

// matchAlertJobs selects started fixtures of the ingested week.
func matchAlertJobs(input IngestGameweekInput) []MatchAlertJob {
	jobs := make([]MatchAlertJob, 0, len(input.Tables.Fixtures))
	for _, f := range input.Tables.Fixtures {
		if !f.Started || f.Gameweek != input.Gameweek {
			continue
		}
		jobs = append(jobs, MatchAlertJob{
			Season:   input.Season,
			Gameweek: input.Gameweek,
			MatchID:  f.ID,
		})
	}
	return jobs
}
