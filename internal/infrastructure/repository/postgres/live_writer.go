package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	qb "github.com/riskibarqy/pl-lineup-bot/internal/platform/querybuilder"
)

// LiveWriter replaces players, fixtures and lineup_entries in one transaction
// so readers never see a half-refreshed week.
type LiveWriter struct {
	db *sqlx.DB
}

func NewLiveWriter(db *sqlx.DB) *LiveWriter {
	return &LiveWriter{db: db}
}

func (w *LiveWriter) ReplaceLive(ctx context.Context, tables gameweek.Tables) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for live replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"lineup_entries", "fixtures", "players"} {
		query, args, err := qb.DeleteFrom(table).All().ToSQL()
		if err != nil {
			return fmt.Errorf("build clear %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	players := make([]any, 0, len(tables.Players))
	for _, p := range tables.Players {
		players = append(players, playerTableModel{
			ID:           p.ID,
			Name:         p.Name,
			TeamID:       p.TeamID,
			Position:     string(p.Position),
			Minutes:      p.Minutes,
			Goals:        p.Goals,
			Assists:      p.Assists,
			TotalPoints:  p.TotalPoints,
			OwnershipPct: p.OwnershipPct,
		})
	}
	if err := insertChunked(ctx, tx, "players", players, len(playerSelectColumns)); err != nil {
		return err
	}

	fixtures := make([]any, 0, len(tables.Fixtures))
	for _, f := range tables.Fixtures {
		fixtures = append(fixtures, fixtureTableModel{
			ID:           f.ID,
			Gameweek:     f.Gameweek,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			HomeTeamName: f.HomeTeamName,
			AwayTeamName: f.AwayTeamName,
			KickoffAt:    f.KickoffAt.UTC(),
			Started:      f.Started,
			Finished:     f.Finished,
		})
	}
	if err := insertChunked(ctx, tx, "fixtures", fixtures, len(fixtureSelectColumns)); err != nil {
		return err
	}

	lineups := make([]any, 0, len(tables.Lineups))
	for _, e := range tables.Lineups {
		lineups = append(lineups, lineupEntryTableModel{
			MatchID:  e.MatchID,
			PlayerID: e.PlayerID,
			Minutes:  e.Minutes,
			Slot:     nullString(e.Slot),
		})
	}
	if err := insertChunked(ctx, tx, "lineup_entries", lineups, 4); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit live replace: %w", err)
	}
	return nil
}

func insertChunked(ctx context.Context, tx *sqlx.Tx, table string, rows []any, columns int) error {
	for _, chunk := range chunkRows(rows, columns) {
		query, args, err := qb.InsertModels(table, chunk, "")
		if err != nil {
			return fmt.Errorf("build insert %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
