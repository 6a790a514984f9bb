package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	qb "github.com/riskibarqy/pl-lineup-bot/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"name",
	"team_id",
	"position",
	"minutes",
	"goals",
	"assists",
	"total_points",
	"ownership_pct",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int64) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.InInt64("id", playerIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}
	return r.selectPlayers(ctx, "select players by ids", query, args)
}

func (r *PlayerRepository) ListByMinOwnership(ctx context.Context, minPct float64) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Gte("ownership_pct", minPct)).
		OrderBy("ownership_pct DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ownership query: %w", err)
	}
	return r.selectPlayers(ctx, "select players by ownership", query, args)
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, op, query string, args []any) ([]player.Player, error) {
	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:           row.ID,
			Name:         row.Name,
			TeamID:       row.TeamID,
			Position:     player.Position(row.Position),
			Minutes:      row.Minutes,
			Goals:        row.Goals,
			Assists:      row.Assists,
			TotalPoints:  row.TotalPoints,
			OwnershipPct: row.OwnershipPct,
		})
	}
	return out, nil
}
