package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

// ReportStatus separates "no data" from "data, nothing flagged".
type ReportStatus string

const (
	ReportStatusNoData       ReportStatus = "no_data"
	ReportStatusNoneDetected ReportStatus = "none_detected"
	ReportStatusFlagged      ReportStatus = "flagged"
)

const (
	noLineupDataLine       = "No lineup data for this match."
	noAnomaliesLine        = "No abnormal attacking output detected."
	noBenchedOwnershipLine = "No highly-owned players benched."
	noLineupsFoundLine     = "No lineups found for this match."
	noOutOfPositionLine    = "No OOP players in this match."
)

func validateMatchID(matchID int64) error {
	if matchID <= 0 {
		return fmt.Errorf("%w: match_id must be greater than zero", ErrInvalidInput)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}

// matchParticipants loads the lineup rows of a match and the players they
// reference. Lineup rows whose player is unknown are dropped from the join.
func matchParticipants(
	ctx context.Context,
	lineups lineup.Repository,
	players player.Repository,
	matchID int64,
) ([]lineup.Entry, map[int64]player.Player, error) {
	entries, err := lineups.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, nil, storeError(fmt.Sprintf("list lineups match_id=%d", matchID), err)
	}
	if len(entries) == 0 {
		return nil, nil, nil
	}

	ids := lineup.UniquePlayerIDs(entries)
	items, err := players.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, storeError(fmt.Sprintf("get players match_id=%d", matchID), err)
	}

	byID := make(map[int64]player.Player, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	return entries, byID, nil
}
