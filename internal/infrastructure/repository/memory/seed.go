package memory

import (
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

const (
	SeedSeason   = "2025/26"
	SeedGameweek = 7
	SeedMatchID  = int64(61)
)

const (
	teamArsenal   = int64(1)
	teamLiverpool = int64(12)
	teamMancity   = int64(13)
	teamChelsea   = int64(7)
)

// SeedTables is a small sample week used when no database is configured.
func SeedTables() gameweek.Tables {
	return gameweek.Tables{
		Players:  SeedPlayers(),
		Fixtures: SeedFixtures(),
		Lineups:  SeedLineups(),
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: 1, Name: "Raya", TeamID: teamArsenal, Position: player.PositionGoalkeeper, Minutes: 540, TotalPoints: 31, OwnershipPct: 18.4},
		{ID: 5, Name: "Gabriel", TeamID: teamArsenal, Position: player.PositionDefender, Minutes: 520, Goals: 2, Assists: 0, TotalPoints: 44, OwnershipPct: 32.9},
		{ID: 16, Name: "Saka", TeamID: teamArsenal, Position: player.PositionMidfielder, Minutes: 498, Goals: 3, Assists: 4, TotalPoints: 47, OwnershipPct: 27.3},
		{ID: 22, Name: "Ødegaard", TeamID: teamArsenal, Position: player.PositionMidfielder, Minutes: 210, Goals: 0, Assists: 2, TotalPoints: 17, OwnershipPct: 6.1},
		{ID: 381, Name: "M.Salah", TeamID: teamLiverpool, Position: player.PositionMidfielder, Minutes: 630, Goals: 4, Assists: 3, TotalPoints: 52, OwnershipPct: 41.7},
		{ID: 373, Name: "Alexander-Arnold", TeamID: teamLiverpool, Position: player.PositionDefender, Minutes: 585, Goals: 0, Assists: 2, TotalPoints: 30, OwnershipPct: 12.2},
		{ID: 430, Name: "Haaland", TeamID: teamMancity, Position: player.PositionForward, Minutes: 610, Goals: 9, Assists: 1, TotalPoints: 70, OwnershipPct: 63.5},
		{ID: 235, Name: "Palmer", TeamID: teamChelsea, Position: player.PositionMidfielder, Minutes: 600, Goals: 3, Assists: 2, TotalPoints: 41, OwnershipPct: 24.0},
	}
}

func SeedFixtures() []fixture.Fixture {
	return []fixture.Fixture{
		{
			ID:           SeedMatchID,
			Gameweek:     SeedGameweek,
			HomeTeamID:   teamArsenal,
			AwayTeamID:   teamLiverpool,
			HomeTeamName: "Arsenal",
			AwayTeamName: "Liverpool",
			KickoffAt:    time.Date(2025, 10, 4, 16, 30, 0, 0, time.UTC),
			Started:      true,
			Finished:     true,
		},
		{
			ID:           62,
			Gameweek:     SeedGameweek,
			HomeTeamID:   teamMancity,
			AwayTeamID:   teamChelsea,
			HomeTeamName: "Man City",
			AwayTeamName: "Chelsea",
			KickoffAt:    time.Date(2025, 10, 5, 15, 30, 0, 0, time.UTC),
		},
	}
}

func SeedLineups() []lineup.Entry {
	return []lineup.Entry{
		{MatchID: SeedMatchID, PlayerID: 1, Minutes: 90, Slot: "GK"},
		{MatchID: SeedMatchID, PlayerID: 5, Minutes: 90, Slot: "CB"},
		{MatchID: SeedMatchID, PlayerID: 16, Minutes: 78, Slot: "RW"},
		{MatchID: SeedMatchID, PlayerID: 22, Minutes: 0},
		{MatchID: SeedMatchID, PlayerID: 381, Minutes: 90, Slot: "RW"},
		{MatchID: SeedMatchID, PlayerID: 373, Minutes: 90, Slot: "CM"},
	}
}
