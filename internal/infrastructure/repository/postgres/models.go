package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	TeamID       int64   `db:"team_id"`
	Position     string  `db:"position"`
	Minutes      int     `db:"minutes"`
	Goals        int     `db:"goals"`
	Assists      int     `db:"assists"`
	TotalPoints  int     `db:"total_points"`
	OwnershipPct float64 `db:"ownership_pct"`
}

type fixtureTableModel struct {
	ID           int64     `db:"id"`
	Gameweek     int       `db:"gameweek"`
	HomeTeamID   int64     `db:"home_team_id"`
	AwayTeamID   int64     `db:"away_team_id"`
	HomeTeamName string    `db:"home_team_name"`
	AwayTeamName string    `db:"away_team_name"`
	KickoffAt    time.Time `db:"kickoff_at"`
	Started      bool      `db:"started"`
	Finished     bool      `db:"finished"`
}

type lineupEntryTableModel struct {
	MatchID  int64          `db:"match_id"`
	PlayerID int64          `db:"player_id"`
	Minutes  int            `db:"minutes"`
	Slot     sql.NullString `db:"slot"`
}

type snapshotInsertModel struct {
	Season     string    `db:"season"`
	Gameweek   int       `db:"gameweek"`
	Payload    []byte    `db:"payload"`
	CapturedAt time.Time `db:"captured_at"`
}

type snapshotTableModel struct {
	Season     string    `db:"season"`
	Gameweek   int       `db:"gameweek"`
	Payload    []byte    `db:"payload"`
	CapturedAt time.Time `db:"captured_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type positionalInsertModel struct {
	PlayerName    string `db:"player_name"`
	Position      string `db:"position"`
	ObservedCount int64  `db:"observed_count"`
}

type positionalTableModel struct {
	PlayerName    string    `db:"player_name"`
	Position      string    `db:"position"`
	ObservedCount int64     `db:"observed_count"`
	UpdatedAt     time.Time `db:"updated_at"`
}
