package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type MatchAlertSummary struct {
	MatchID       int64
	Fixture       fixture.Fixture
	Anomalies     AnomalyReport
	Ownership     OwnershipReport
	OutOfPosition OutOfPositionReport
}

// Flagged reports whether any detector produced an alert.
func (s MatchAlertSummary) Flagged() bool {
	return s.Anomalies.Status == ReportStatusFlagged ||
		s.Ownership.Status == ReportStatusFlagged ||
		s.OutOfPosition.Status == ReportStatusFlagged
}

// GameweekAlertSummary covers every started fixture of one week, in kickoff order.
type GameweekAlertSummary struct {
	Gameweek int
	Matches  []MatchAlertSummary
}

// MatchAlertService runs every detector for one match, as queued after ingestion.
type MatchAlertService struct {
	fixtures      fixture.Repository
	anomalies     *AnomalyService
	ownership     *OwnershipService
	outOfPosition *OutOfPositionService
	logger        *logging.Logger
}

func NewMatchAlertService(
	fixtures fixture.Repository,
	anomalies *AnomalyService,
	ownership *OwnershipService,
	outOfPosition *OutOfPositionService,
	logger *logging.Logger,
) *MatchAlertService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchAlertService{
		fixtures:      fixtures,
		anomalies:     anomalies,
		ownership:     ownership,
		outOfPosition: outOfPosition,
		logger:        logger,
	}
}

// Run loads the fixture for context and fails with ErrNotFound for a match
// id the live table does not know.
func (s *MatchAlertService) Run(ctx context.Context, matchID int64) (MatchAlertSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAlertService.Run")
	defer span.End()

	if err := validateMatchID(matchID); err != nil {
		return MatchAlertSummary{}, err
	}

	f, ok, err := s.fixtures.GetByID(ctx, matchID)
	if err != nil {
		return MatchAlertSummary{}, storeError(fmt.Sprintf("get fixture id=%d", matchID), err)
	}
	if !ok {
		return MatchAlertSummary{}, fmt.Errorf("%w: fixture %d", ErrNotFound, matchID)
	}
	return s.runFixture(ctx, f)
}

// RunGameweek runs the detectors for every started fixture of week.
// Fixtures that have not kicked off are skipped.
func (s *MatchAlertService) RunGameweek(ctx context.Context, week int) (GameweekAlertSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAlertService.RunGameweek")
	defer span.End()

	if err := gameweek.ValidateWeek(week); err != nil {
		return GameweekAlertSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fixtures, err := s.fixtures.ListByGameweek(ctx, week)
	if err != nil {
		return GameweekAlertSummary{}, storeError(fmt.Sprintf("list fixtures gameweek=%d", week), err)
	}

	out := GameweekAlertSummary{Gameweek: week, Matches: make([]MatchAlertSummary, 0, len(fixtures))}
	for _, f := range fixtures {
		if !f.Started {
			continue
		}
		summary, err := s.runFixture(ctx, f)
		if err != nil {
			return GameweekAlertSummary{}, err
		}
		out.Matches = append(out.Matches, summary)
	}
	return out, nil
}

func (s *MatchAlertService) runFixture(ctx context.Context, f fixture.Fixture) (MatchAlertSummary, error) {
	summary := MatchAlertSummary{MatchID: f.ID, Fixture: f}
	var err error
	if summary.Anomalies, err = s.anomalies.Detect(ctx, f.ID); err != nil {
		return MatchAlertSummary{}, err
	}
	if summary.Ownership, err = s.ownership.Detect(ctx, f.ID); err != nil {
		return MatchAlertSummary{}, err
	}
	if summary.OutOfPosition, err = s.outOfPosition.Detect(ctx, f.ID); err != nil {
		return MatchAlertSummary{}, err
	}

	if summary.Flagged() {
		s.logger.InfoContext(ctx, "match alerts raised",
			"match_id", f.ID,
			"gameweek", f.Gameweek,
			"home", f.HomeTeamName,
			"away", f.AwayTeamName,
			"anomalies", summary.Anomalies.Lines,
			"benched", summary.Ownership.Lines,
			"out_of_position", summary.OutOfPosition.Lines,
			"insufficient_data", summary.Ownership.InsufficientData,
		)
	}
	return summary, nil
}
