package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

type attackingAlertDTO struct {
	PlayerID    int64   `json:"player_id"`
	Name        string  `json:"name"`
	Position    string  `json:"position"`
	Baseline    float64 `json:"baseline_per_90"`
	MatchAttack int     `json:"match_attack"`
}

type anomalyReportDTO struct {
	MatchID int64               `json:"match_id"`
	Status  string              `json:"status"`
	Lines   []string            `json:"lines"`
	Alerts  []attackingAlertDTO `json:"alerts"`
}

type benchedAlertDTO struct {
	PlayerID     int64   `json:"player_id"`
	Name         string  `json:"name"`
	OwnershipPct float64 `json:"ownership_pct"`
}

type ownershipReportDTO struct {
	MatchID          int64             `json:"match_id"`
	Status           string            `json:"status"`
	InsufficientData bool              `json:"insufficient_data"`
	Lines            []string          `json:"lines"`
	Alerts           []benchedAlertDTO `json:"alerts"`
}

type outOfPositionAlertDTO struct {
	PlayerID   int64  `json:"player_id"`
	Name       string `json:"name"`
	Registered string `json:"registered_position"`
	Slot       string `json:"slot_position"`
	Fouls      string `json:"fouls_delta"`
	Shots      string `json:"shots_on_target_delta"`
}

type outOfPositionReportDTO struct {
	MatchID int64                   `json:"match_id"`
	Status  string                  `json:"status"`
	Lines   []string                `json:"lines"`
	Alerts  []outOfPositionAlertDTO `json:"alerts"`
}

type fixtureDTO struct {
	ID           int64  `json:"id"`
	Gameweek     int    `json:"gameweek"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamName string `json:"away_team_name"`
	KickoffAt    string `json:"kickoff_at,omitempty"`
	Finished     bool   `json:"finished"`
}

type matchAlertSummaryDTO struct {
	MatchID       int64                  `json:"match_id"`
	Fixture       fixtureDTO             `json:"fixture"`
	Flagged       bool                   `json:"flagged"`
	Anomalies     anomalyReportDTO       `json:"anomalies"`
	Ownership     ownershipReportDTO     `json:"ownership"`
	OutOfPosition outOfPositionReportDTO `json:"out_of_position"`
}

type attackingBaselineDTO struct {
	PlayerID int64    `json:"player_id"`
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Minutes  int      `json:"minutes"`
	Goals    int      `json:"goals"`
	Assists  int      `json:"assists"`
	Defined  bool     `json:"defined"`
	Per90    *float64 `json:"per_90"`
}

type positionCountDTO struct {
	Position string `json:"position"`
	Count    int64  `json:"count"`
}

type positionalBaselineDTO struct {
	PlayerName string             `json:"player_name"`
	Primary    string             `json:"primary_position,omitempty"`
	Total      int64              `json:"total"`
	Positions  []positionCountDTO `json:"positions"`
	UpdatedAt  string             `json:"updated_at,omitempty"`
}

type recordDocumentDTO struct {
	Observations int  `json:"observations"`
	Counters     int  `json:"counters"`
	Visited      int  `json:"visited"`
	Truncated    bool `json:"truncated"`
}

type snapshotDTO struct {
	Season     string `json:"season"`
	Gameweek   int    `json:"gameweek"`
	CapturedAt string `json:"captured_at"`
	Players    int    `json:"players"`
	Fixtures   int    `json:"fixtures"`
	Lineups    int    `json:"lineups"`
}

type ingestPlayerRequest struct {
	ID           int64   `json:"id" validate:"required,gt=0"`
	Name         string  `json:"name" validate:"required,max=200"`
	TeamID       int64   `json:"team_id" validate:"gte=0"`
	Position     string  `json:"position" validate:"required_without=ElementType"`
	ElementType  int     `json:"element_type" validate:"omitempty,min=1,max=4"`
	Minutes      int     `json:"minutes" validate:"gte=0"`
	Goals        int     `json:"goals" validate:"gte=0"`
	Assists      int     `json:"assists" validate:"gte=0"`
	TotalPoints  int     `json:"total_points"`
	OwnershipPct float64 `json:"ownership_pct" validate:"gte=0,lte=100"`
}

type ingestFixtureRequest struct {
	ID           int64     `json:"id" validate:"required,gt=0"`
	Gameweek     int       `json:"gameweek" validate:"gte=0"`
	HomeTeamID   int64     `json:"home_team_id" validate:"gte=0"`
	AwayTeamID   int64     `json:"away_team_id" validate:"gte=0"`
	HomeTeamName string    `json:"home_team_name"`
	AwayTeamName string    `json:"away_team_name"`
	KickoffAt    time.Time `json:"kickoff_at"`
	Started      bool      `json:"started"`
	Finished     bool      `json:"finished"`
}

type ingestLineupRequest struct {
	MatchID  int64  `json:"match_id" validate:"required,gt=0"`
	PlayerID int64  `json:"player_id" validate:"required,gt=0"`
	Minutes  int    `json:"minutes" validate:"gte=0"`
	Slot     string `json:"slot" validate:"max=16"`
}

type ingestGameweekRequest struct {
	Season   string                 `json:"season" validate:"required,max=32"`
	Gameweek int                    `json:"gameweek" validate:"gte=0"`
	Players  []ingestPlayerRequest  `json:"players" validate:"required,min=1,dive"`
	Fixtures []ingestFixtureRequest `json:"fixtures" validate:"dive"`
	Lineups  []ingestLineupRequest  `json:"lineups" validate:"dive"`
}

type matchAlertJobRequest struct {
	Season   string `json:"season" validate:"max=32"`
	Gameweek int    `json:"gameweek" validate:"gte=0"`
	MatchID  int64  `json:"match_id" validate:"required,gt=0"`
}

func anomalyReportToDTO(v usecase.AnomalyReport) anomalyReportDTO {
	out := anomalyReportDTO{
		MatchID: v.MatchID,
		Status:  string(v.Status),
		Lines:   nonNilLines(v.Lines),
		Alerts:  make([]attackingAlertDTO, 0, len(v.Alerts)),
	}
	for _, a := range v.Alerts {
		out.Alerts = append(out.Alerts, attackingAlertDTO{
			PlayerID:    a.PlayerID,
			Name:        a.Name,
			Position:    string(a.Position),
			Baseline:    a.Baseline,
			MatchAttack: a.MatchAttack,
		})
	}
	return out
}

func ownershipReportToDTO(v usecase.OwnershipReport) ownershipReportDTO {
	out := ownershipReportDTO{
		MatchID:          v.MatchID,
		Status:           string(v.Status),
		InsufficientData: v.InsufficientData,
		Lines:            nonNilLines(v.Lines),
		Alerts:           make([]benchedAlertDTO, 0, len(v.Alerts)),
	}
	for _, a := range v.Alerts {
		out.Alerts = append(out.Alerts, benchedAlertDTO{
			PlayerID:     a.PlayerID,
			Name:         a.Name,
			OwnershipPct: a.OwnershipPct,
		})
	}
	return out
}

func outOfPositionReportToDTO(v usecase.OutOfPositionReport) outOfPositionReportDTO {
	out := outOfPositionReportDTO{
		MatchID: v.MatchID,
		Status:  string(v.Status),
		Lines:   nonNilLines(v.Lines),
		Alerts:  make([]outOfPositionAlertDTO, 0, len(v.Alerts)),
	}
	for _, a := range v.Alerts {
		out.Alerts = append(out.Alerts, outOfPositionAlertDTO{
			PlayerID:   a.PlayerID,
			Name:       a.Name,
			Registered: string(a.Registered),
			Slot:       string(a.Slot),
			Fouls:      a.FoulDelta(),
			Shots:      a.ShotDelta(),
		})
	}
	return out
}

type gameweekAlertSummaryDTO struct {
	Gameweek int                    `json:"gameweek"`
	Flagged  int                    `json:"flagged_matches"`
	Matches  []matchAlertSummaryDTO `json:"matches"`
}

func gameweekAlertSummaryToDTO(v usecase.GameweekAlertSummary) gameweekAlertSummaryDTO {
	out := gameweekAlertSummaryDTO{
		Gameweek: v.Gameweek,
		Matches:  make([]matchAlertSummaryDTO, 0, len(v.Matches)),
	}
	for _, m := range v.Matches {
		if m.Flagged() {
			out.Flagged++
		}
		out.Matches = append(out.Matches, matchAlertSummaryToDTO(m))
	}
	return out
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	out := fixtureDTO{
		ID:           f.ID,
		Gameweek:     f.Gameweek,
		HomeTeamName: f.HomeTeamName,
		AwayTeamName: f.AwayTeamName,
		Finished:     f.Finished,
	}
	if !f.KickoffAt.IsZero() {
		out.KickoffAt = f.KickoffAt.UTC().Format(time.RFC3339)
	}
	return out
}

func matchAlertSummaryToDTO(v usecase.MatchAlertSummary) matchAlertSummaryDTO {
	return matchAlertSummaryDTO{
		MatchID:       v.MatchID,
		Fixture:       fixtureToDTO(v.Fixture),
		Flagged:       v.Flagged(),
		Anomalies:     anomalyReportToDTO(v.Anomalies),
		Ownership:     ownershipReportToDTO(v.Ownership),
		OutOfPosition: outOfPositionReportToDTO(v.OutOfPosition),
	}
}

func attackingBaselineToDTO(v usecase.AttackingBaseline) attackingBaselineDTO {
	out := attackingBaselineDTO{
		PlayerID: v.Player.ID,
		Name:     v.Player.Name,
		Position: string(v.Player.Position),
		Minutes:  v.Player.Minutes,
		Goals:    v.Player.Goals,
		Assists:  v.Player.Assists,
		Defined:  v.Defined,
	}
	if v.Defined {
		rate := v.Rate
		out.Per90 = &rate
	}
	return out
}

func positionalBaselineToDTO(v positional.Baseline) positionalBaselineDTO {
	out := positionalBaselineDTO{
		PlayerName: v.PlayerName,
		Total:      v.Total(),
		Positions:  make([]positionCountDTO, 0, len(v.Positions)),
	}
	if primary, _, ok := v.Primary(); ok {
		out.Primary = primary
	}
	for _, pos := range v.SortedPositions() {
		out.Positions = append(out.Positions, positionCountDTO{Position: pos, Count: v.Positions[pos]})
	}
	if !v.UpdatedAt.IsZero() {
		out.UpdatedAt = v.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func recordResultToDTO(v usecase.RecordResult) recordDocumentDTO {
	return recordDocumentDTO{
		Observations: v.Observations,
		Counters:     v.Counters,
		Visited:      v.Visited,
		Truncated:    v.Truncated,
	}
}

func snapshotToDTO(v snapshot.Snapshot) snapshotDTO {
	return snapshotDTO{
		Season:     v.Season,
		Gameweek:   v.Gameweek,
		CapturedAt: v.CapturedAt.UTC().Format(time.RFC3339),
		Players:    len(v.Tables.Players),
		Fixtures:   len(v.Tables.Fixtures),
		Lineups:    len(v.Tables.Lineups),
	}
}

// position prefers the explicit code and falls back to the fantasy API's
// element_type.
func (p ingestPlayerRequest) position() (player.Position, bool) {
	if strings.TrimSpace(p.Position) != "" {
		return player.NormalizePosition(p.Position)
	}
	return player.PositionFromElementType(p.ElementType)
}

func (r ingestGameweekRequest) toInput() (usecase.IngestGameweekInput, error) {
	tables := gameweek.Tables{
		Players:  make([]player.Player, 0, len(r.Players)),
		Fixtures: make([]fixture.Fixture, 0, len(r.Fixtures)),
		Lineups:  make([]lineup.Entry, 0, len(r.Lineups)),
	}
	for _, p := range r.Players {
		pos, ok := p.position()
		if !ok {
			return usecase.IngestGameweekInput{}, fmt.Errorf("%w: player %d has invalid position %q", usecase.ErrInvalidInput, p.ID, p.Position)
		}
		tables.Players = append(tables.Players, player.Player{
			ID:           p.ID,
			Name:         strings.TrimSpace(p.Name),
			TeamID:       p.TeamID,
			Position:     pos,
			Minutes:      p.Minutes,
			Goals:        p.Goals,
			Assists:      p.Assists,
			TotalPoints:  p.TotalPoints,
			OwnershipPct: p.OwnershipPct,
		})
	}
	for _, f := range r.Fixtures {
		tables.Fixtures = append(tables.Fixtures, fixture.Fixture{
			ID:           f.ID,
			Gameweek:     f.Gameweek,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			HomeTeamName: f.HomeTeamName,
			AwayTeamName: f.AwayTeamName,
			KickoffAt:    f.KickoffAt,
			Started:      f.Started,
			Finished:     f.Finished,
		})
	}
	for _, l := range r.Lineups {
		tables.Lineups = append(tables.Lineups, lineup.Entry{
			MatchID:  l.MatchID,
			PlayerID: l.PlayerID,
			Minutes:  l.Minutes,
			Slot:     l.Slot,
		})
	}

	return usecase.IngestGameweekInput{
		Season:   r.Season,
		Gameweek: r.Gameweek,
		Tables:   tables,
	}, nil
}

func nonNilLines(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
