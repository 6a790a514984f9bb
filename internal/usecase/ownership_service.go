package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type OwnershipReport struct {
	MatchID int64
	Status  ReportStatus
	// InsufficientData is set when the match has no lineup rows. Every
	// highly-owned player is then reported as benched.
	InsufficientData bool
	Alerts           []anomaly.BenchedAlert
	Lines            []string
}

type OwnershipService struct {
	lineupRepo lineup.Repository
	playerRepo player.Repository
	thresholds anomaly.Thresholds
	logger     *logging.Logger
}

func NewOwnershipService(
	lineupRepo lineup.Repository,
	playerRepo player.Repository,
	thresholds anomaly.Thresholds,
	logger *logging.Logger,
) *OwnershipService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OwnershipService{
		lineupRepo: lineupRepo,
		playerRepo: playerRepo,
		thresholds: thresholds.Normalize(),
		logger:     logger,
	}
}

func (s *OwnershipService) Detect(ctx context.Context, matchID int64) (OwnershipReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OwnershipService.Detect")
	defer span.End()

	if err := validateMatchID(matchID); err != nil {
		return OwnershipReport{}, err
	}

	entries, err := s.lineupRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return OwnershipReport{}, storeError(fmt.Sprintf("list lineups match_id=%d", matchID), err)
	}
	started := lineup.StartedIDs(entries)

	owned, err := s.playerRepo.ListByMinOwnership(ctx, s.thresholds.OwnershipThreshold)
	if err != nil {
		return OwnershipReport{}, storeError("list players by ownership", err)
	}

	report := OwnershipReport{
		MatchID:          matchID,
		InsufficientData: len(entries) == 0,
	}
	seen := make(map[int64]struct{}, len(owned))
	for _, p := range owned {
		if !s.thresholds.IsHighlyOwned(p.OwnershipPct) {
			continue
		}
		if _, ok := started[p.ID]; ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}

		alert := anomaly.BenchedAlert{PlayerID: p.ID, Name: p.Name, OwnershipPct: p.OwnershipPct}
		report.Alerts = append(report.Alerts, alert)
		report.Lines = append(report.Lines, alert.Line())
	}

	if len(report.Alerts) == 0 {
		report.Status = ReportStatusNoneDetected
		report.Lines = []string{noBenchedOwnershipLine}
	} else {
		report.Status = ReportStatusFlagged
	}

	if report.InsufficientData {
		s.logger.WarnContext(ctx, "ownership alerts computed without lineup data",
			"match_id", matchID,
			"flagged", len(report.Alerts),
		)
	}
	return report, nil
}
