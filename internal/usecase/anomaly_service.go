package usecase

import (
	"context"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type AnomalyReport struct {
	MatchID int64
	Status  ReportStatus
	Alerts  []anomaly.AttackingAlert
	// Lines always has at least one entry; a sentinel when nothing is flagged.
	Lines []string
}

type AnomalyService struct {
	lineupRepo lineup.Repository
	playerRepo player.Repository
	thresholds anomaly.Thresholds
	logger     *logging.Logger
}

func NewAnomalyService(
	lineupRepo lineup.Repository,
	playerRepo player.Repository,
	thresholds anomaly.Thresholds,
	logger *logging.Logger,
) *AnomalyService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnomalyService{
		lineupRepo: lineupRepo,
		playerRepo: playerRepo,
		thresholds: thresholds.Normalize(),
		logger:     logger,
	}
}

// seasonTotalAttack stands in for a player's match output. Only season
// cumulative goals and assists are stored, so a single match cannot be
// isolated; alerts are therefore relative to the season total.
func seasonTotalAttack(p player.Player) int {
	return p.AttackingActions()
}

func (s *AnomalyService) Detect(ctx context.Context, matchID int64) (AnomalyReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnomalyService.Detect")
	defer span.End()

	if err := validateMatchID(matchID); err != nil {
		return AnomalyReport{}, err
	}

	entries, players, err := matchParticipants(ctx, s.lineupRepo, s.playerRepo, matchID)
	if err != nil {
		return AnomalyReport{}, err
	}
	report := AnomalyReport{MatchID: matchID}
	if len(entries) == 0 {
		report.Status = ReportStatusNoData
		report.Lines = []string{noLineupDataLine}
		return report, nil
	}

	skipped := 0
	for _, id := range lineup.UniquePlayerIDs(entries) {
		p, ok := players[id]
		if !ok {
			skipped++
			continue
		}
		baseline, ok := s.thresholds.RateBaseline(p.Goals, p.Assists, p.Minutes)
		if !ok {
			skipped++
			continue
		}
		matchAttack := seasonTotalAttack(p)
		if !s.thresholds.IsAttackingOutlier(matchAttack, baseline) {
			continue
		}
		alert := anomaly.AttackingAlert{
			PlayerID:    p.ID,
			Name:        p.Name,
			Position:    p.Position,
			Baseline:    baseline,
			MatchAttack: matchAttack,
		}
		report.Alerts = append(report.Alerts, alert)
		report.Lines = append(report.Lines, alert.Line())
	}

	if len(report.Alerts) == 0 {
		report.Status = ReportStatusNoneDetected
		report.Lines = []string{noAnomaliesLine}
	} else {
		report.Status = ReportStatusFlagged
	}

	s.logger.DebugContext(ctx, "anomaly detection finished",
		"match_id", matchID,
		"lineup_rows", len(entries),
		"skipped", skipped,
		"flagged", len(report.Alerts),
	)
	return report, nil
}
