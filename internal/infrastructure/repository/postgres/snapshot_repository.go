package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	qb "github.com/riskibarqy/pl-lineup-bot/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type snapshotPayload struct {
	Players  []snapshotPlayer  `json:"players"`
	Fixtures []snapshotFixture `json:"fixtures"`
	Lineups  []snapshotLineup  `json:"lineups"`
}

type snapshotPlayer struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TeamID       int64   `json:"team_id"`
	Position     string  `json:"position"`
	Minutes      int     `json:"minutes"`
	Goals        int     `json:"goals"`
	Assists      int     `json:"assists"`
	TotalPoints  int     `json:"total_points"`
	OwnershipPct float64 `json:"ownership_pct"`
}

type snapshotFixture struct {
	ID           int64     `json:"id"`
	Gameweek     int       `json:"gameweek"`
	HomeTeamID   int64     `json:"home_team_id"`
	AwayTeamID   int64     `json:"away_team_id"`
	HomeTeamName string    `json:"home_team_name"`
	AwayTeamName string    `json:"away_team_name"`
	KickoffAt    time.Time `json:"kickoff_at"`
	Started      bool      `json:"started"`
	Finished     bool      `json:"finished"`
}

type snapshotLineup struct {
	MatchID  int64  `json:"match_id"`
	PlayerID int64  `json:"player_id"`
	Minutes  int    `json:"minutes"`
	Slot     string `json:"slot,omitempty"`
}

func encodeSnapshotPayload(tables gameweek.Tables) ([]byte, error) {
	payload := snapshotPayload{
		Players:  make([]snapshotPlayer, 0, len(tables.Players)),
		Fixtures: make([]snapshotFixture, 0, len(tables.Fixtures)),
		Lineups:  make([]snapshotLineup, 0, len(tables.Lineups)),
	}
	for _, p := range tables.Players {
		payload.Players = append(payload.Players, snapshotPlayer{
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
	for _, f := range tables.Fixtures {
		payload.Fixtures = append(payload.Fixtures, snapshotFixture{
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
	for _, e := range tables.Lineups {
		payload.Lineups = append(payload.Lineups, snapshotLineup{
			MatchID:  e.MatchID,
			PlayerID: e.PlayerID,
			Minutes:  e.Minutes,
			Slot:     e.Slot,
		})
	}
	return sonic.Marshal(payload)
}

func decodeSnapshotPayload(raw []byte) (gameweek.Tables, error) {
	var payload snapshotPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return gameweek.Tables{}, err
	}

	tables := gameweek.Tables{
		Players:  make([]player.Player, 0, len(payload.Players)),
		Fixtures: make([]fixture.Fixture, 0, len(payload.Fixtures)),
		Lineups:  make([]lineup.Entry, 0, len(payload.Lineups)),
	}
	for _, p := range payload.Players {
		tables.Players = append(tables.Players, player.Player{
			ID:           p.ID,
			Name:         p.Name,
			TeamID:       p.TeamID,
			Position:     player.Position(p.Position),
			Minutes:      p.Minutes,
			Goals:        p.Goals,
			Assists:      p.Assists,
			TotalPoints:  p.TotalPoints,
			OwnershipPct: p.OwnershipPct,
		})
	}
	for _, f := range payload.Fixtures {
		tables.Fixtures = append(tables.Fixtures, fixture.Fixture{
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
	for _, e := range payload.Lineups {
		tables.Lineups = append(tables.Lineups, lineup.Entry{
			MatchID:  e.MatchID,
			PlayerID: e.PlayerID,
			Minutes:  e.Minutes,
			Slot:     e.Slot,
		})
	}
	return tables, nil
}

func (r *SnapshotRepository) Upsert(ctx context.Context, s snapshot.Snapshot) error {
	payload, err := encodeSnapshotPayload(s.Tables)
	if err != nil {
		return fmt.Errorf("encode snapshot %s payload: %w", s.Key, err)
	}

	insertModel := snapshotInsertModel{
		Season:     s.Season,
		Gameweek:   s.Gameweek,
		Payload:    payload,
		CapturedAt: s.CapturedAt.UTC(),
	}
	query, args, err := qb.InsertModel("historical_snapshots", insertModel, `ON CONFLICT (season, gameweek)
DO UPDATE SET
    payload = EXCLUDED.payload,
    captured_at = EXCLUDED.captured_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", s.Key, err)
	}
	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, key snapshot.Key) (snapshot.Snapshot, bool, error) {
	query, args, err := qb.Select("season", "gameweek", "payload", "captured_at", "updated_at").
		From("historical_snapshots").
		Where(
			qb.Eq("season", key.Season),
			qb.Eq("gameweek", key.Gameweek),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}

	tables, err := decodeSnapshotPayload(row.Payload)
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("decode snapshot %s payload: %w", key, err)
	}
	return snapshot.Snapshot{
		Key:        snapshot.Key{Season: row.Season, Gameweek: row.Gameweek},
		Tables:     tables,
		CapturedAt: row.CapturedAt.UTC(),
	}, true, nil
}

func (r *SnapshotRepository) ListKeys(ctx context.Context, season string) ([]snapshot.Key, error) {
	query, args, err := qb.Select("season", "gameweek").
		From("historical_snapshots").
		Where(qb.Eq("season", season)).
		OrderBy("gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshot keys query: %w", err)
	}

	var rows []struct {
		Season   string `db:"season"`
		Gameweek int    `db:"gameweek"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshot keys: %w", err)
	}

	out := make([]snapshot.Key, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshot.Key{Season: row.Season, Gameweek: row.Gameweek})
	}
	return out, nil
}
