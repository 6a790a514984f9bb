package usecase

import (
	"context"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

type OutOfPositionReport struct {
	MatchID int64
	Status  ReportStatus
	Alerts  []anomaly.OutOfPositionAlert
	Lines   []string
}

type OutOfPositionService struct {
	lineupRepo lineup.Repository
	playerRepo player.Repository
}

func NewOutOfPositionService(lineupRepo lineup.Repository, playerRepo player.Repository) *OutOfPositionService {
	return &OutOfPositionService{lineupRepo: lineupRepo, playerRepo: playerRepo}
}

func (s *OutOfPositionService) Detect(ctx context.Context, matchID int64) (OutOfPositionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutOfPositionService.Detect")
	defer span.End()

	if err := validateMatchID(matchID); err != nil {
		return OutOfPositionReport{}, err
	}

	entries, players, err := matchParticipants(ctx, s.lineupRepo, s.playerRepo, matchID)
	if err != nil {
		return OutOfPositionReport{}, err
	}
	report := OutOfPositionReport{MatchID: matchID}
	if len(entries) == 0 {
		report.Status = ReportStatusNoData
		report.Lines = []string{noLineupsFoundLine}
		return report, nil
	}

	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.PlayerID]; dup {
			continue
		}
		p, ok := players[e.PlayerID]
		if !ok {
			continue
		}
		alert, ok := anomaly.OutOfPosition(p, e)
		if !ok {
			continue
		}
		seen[e.PlayerID] = struct{}{}
		report.Alerts = append(report.Alerts, alert)
		report.Lines = append(report.Lines, alert.Line())
	}

	if len(report.Alerts) == 0 {
		report.Status = ReportStatusNoneDetected
		report.Lines = []string{noOutOfPositionLine}
	} else {
		report.Status = ReportStatusFlagged
	}
	return report, nil
}
