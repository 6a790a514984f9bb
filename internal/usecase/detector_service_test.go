package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

const testMatchID = int64(501)

func detectorFixture() ([]player.Player, []lineup.Entry) {
	players := []player.Player{
		// P: under the minutes floor.
		{ID: 1, Name: "Nwaneri", Position: player.PositionMidfielder, Minutes: 40, OwnershipPct: 2.0},
		// Q: 900 minutes, 6+3.
		{ID: 2, Name: "Mbeumo", Position: player.PositionMidfielder, Minutes: 900, Goals: 6, Assists: 3, OwnershipPct: 35.5},
		// zero attack with a zero baseline.
		{ID: 3, Name: "Pickford", Position: player.PositionGoalkeeper, Minutes: 900, OwnershipPct: 20.0},
		{ID: 4, Name: "Haaland", Position: player.PositionForward, Minutes: 810, Goals: 10, OwnershipPct: 60.2},
		{ID: 5, Name: "Wirtz", Position: player.PositionMidfielder, Minutes: 700, Goals: 1, Assists: 1, OwnershipPct: 19.9},
	}
	entries := []lineup.Entry{
		{MatchID: testMatchID, PlayerID: 1, Minutes: 12},
		{MatchID: testMatchID, PlayerID: 2, Minutes: 90, Slot: "RW"},
		{MatchID: testMatchID, PlayerID: 2, Minutes: 90, Slot: "RW"},
		{MatchID: testMatchID, PlayerID: 3, Minutes: 90, Slot: "GK"},
		{MatchID: testMatchID, PlayerID: 4, Minutes: 0},
		{MatchID: testMatchID, PlayerID: 77, Minutes: 90},
	}
	return players, entries
}

func newDetectors(players []player.Player, entries []lineup.Entry) (*AnomalyService, *OwnershipService, *OutOfPositionService) {
	playerRepo := memory.NewPlayerRepository(players)
	lineupRepo := memory.NewLineupRepository(entries)
	logger := logging.NewNop()
	return NewAnomalyService(lineupRepo, playerRepo, anomaly.DefaultThresholds(), logger),
		NewOwnershipService(lineupRepo, playerRepo, anomaly.DefaultThresholds(), logger),
		NewOutOfPositionService(lineupRepo, playerRepo)
}

func TestAnomalyService_Detect_FlagsOutliersOnce(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	service, _, _ := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), testMatchID)
	if err != nil {
		t.Fatalf("detect anomalies: %v", err)
	}
	if report.Status != ReportStatusFlagged {
		t.Fatalf("unexpected status %s", report.Status)
	}

	flagged := map[int64]int{}
	for _, a := range report.Alerts {
		flagged[a.PlayerID]++
	}
	if flagged[2] != 1 {
		t.Fatalf("expected player Q flagged exactly once, got %d", flagged[2])
	}
	if flagged[4] != 1 {
		t.Fatalf("expected unused sub with defined baseline to be flagged, got %d", flagged[4])
	}
	if _, ok := flagged[1]; ok {
		t.Fatalf("player under minutes floor must never be flagged")
	}
	if _, ok := flagged[3]; ok {
		t.Fatalf("zero attack must not be flagged on a zero baseline")
	}
	if len(report.Lines) != len(report.Alerts) {
		t.Fatalf("expected one line per alert, got %d lines for %d alerts", len(report.Lines), len(report.Alerts))
	}
	if !strings.HasPrefix(report.Lines[0], "Mbeumo (MID)") {
		t.Fatalf("expected lineup order, got %q", report.Lines[0])
	}
}

func TestAnomalyService_Detect_Sentinels(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	service, _, _ := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), 999)
	if err != nil {
		t.Fatalf("detect anomalies: %v", err)
	}
	if report.Status != ReportStatusNoData || len(report.Lines) != 1 || report.Lines[0] != noLineupDataLine {
		t.Fatalf("expected no data sentinel, got %+v", report)
	}

	quiet := []lineup.Entry{{MatchID: 600, PlayerID: 1, Minutes: 90}, {MatchID: 600, PlayerID: 3, Minutes: 90}}
	service, _, _ = newDetectors(players, quiet)
	report, err = service.Detect(context.Background(), 600)
	if err != nil {
		t.Fatalf("detect anomalies: %v", err)
	}
	if report.Status != ReportStatusNoneDetected || len(report.Lines) != 1 || report.Lines[0] != noAnomaliesLine {
		t.Fatalf("expected none detected sentinel, got %+v", report)
	}

	if _, err := service.Detect(context.Background(), 0); err == nil {
		t.Fatalf("expected invalid match id to fail")
	}
}

func TestOwnershipService_Detect(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	_, service, _ := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), testMatchID)
	if err != nil {
		t.Fatalf("detect ownership alerts: %v", err)
	}
	if report.InsufficientData {
		t.Fatalf("lineup rows exist, data must not be marked insufficient")
	}
	if len(report.Alerts) != 1 || report.Alerts[0].PlayerID != 4 {
		t.Fatalf("expected only the unused highly-owned player, got %+v", report.Alerts)
	}
}

func TestOwnershipService_Detect_NoLineupsFlagsEveryoneOwned(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	_, service, _ := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), 999)
	if err != nil {
		t.Fatalf("detect ownership alerts: %v", err)
	}
	if !report.InsufficientData {
		t.Fatalf("expected insufficient data flag")
	}
	got := map[int64]bool{}
	for _, a := range report.Alerts {
		if got[a.PlayerID] {
			t.Fatalf("player %d reported twice", a.PlayerID)
		}
		got[a.PlayerID] = true
	}
	for _, id := range []int64{2, 3, 4} {
		if !got[id] {
			t.Fatalf("expected player %d (>= 20%% owned) to be reported", id)
		}
	}
	if got[5] || got[1] {
		t.Fatalf("players under 20%% must not be reported: %+v", report.Alerts)
	}
}

func TestOwnershipService_Detect_NoneBenched(t *testing.T) {
	t.Parallel()

	players := []player.Player{{ID: 9, Name: "Salah", Position: player.PositionMidfielder, Minutes: 900, OwnershipPct: 45}}
	entries := []lineup.Entry{{MatchID: 10, PlayerID: 9, Minutes: 90}}
	_, service, _ := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), 10)
	if err != nil {
		t.Fatalf("detect ownership alerts: %v", err)
	}
	if report.Status != ReportStatusNoneDetected || report.Lines[0] != noBenchedOwnershipLine {
		t.Fatalf("expected none detected sentinel, got %+v", report)
	}
}

func TestOutOfPositionService_Detect(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	_, _, service := newDetectors(players, entries)

	report, err := service.Detect(context.Background(), testMatchID)
	if err != nil {
		t.Fatalf("detect out of position: %v", err)
	}
	if report.Status != ReportStatusFlagged || len(report.Alerts) != 1 {
		t.Fatalf("expected a single OOP alert, got %+v", report)
	}
	want := "Mbeumo OOP (MID -> FWD): Likely +0.5 fouls, +0.3 shots on target."
	if report.Lines[0] != want {
		t.Fatalf("unexpected line %q", report.Lines[0])
	}

	report, err = service.Detect(context.Background(), 999)
	if err != nil {
		t.Fatalf("detect out of position: %v", err)
	}
	if report.Lines[0] != noLineupsFoundLine {
		t.Fatalf("expected no lineups sentinel, got %q", report.Lines[0])
	}

	inPosition := []lineup.Entry{{MatchID: 11, PlayerID: 3, Minutes: 90, Slot: "GK"}}
	_, _, service = newDetectors(players, inPosition)
	report, err = service.Detect(context.Background(), 11)
	if err != nil {
		t.Fatalf("detect out of position: %v", err)
	}
	if report.Lines[0] != noOutOfPositionLine {
		t.Fatalf("expected no OOP sentinel, got %q", report.Lines[0])
	}
}

func matchAlertFixtures() *memory.FixtureRepository {
	return memory.NewFixtureRepository([]fixture.Fixture{
		{ID: testMatchID, Gameweek: 9, HomeTeamName: "Brentford", AwayTeamName: "Everton", Started: true},
		{ID: 502, Gameweek: 9, HomeTeamName: "Fulham", AwayTeamName: "Wolves"},
		{ID: 503, Gameweek: 10, Started: true},
	})
}

func TestMatchAlertService_Run(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	anomalies, ownership, oop := newDetectors(players, entries)
	service := NewMatchAlertService(matchAlertFixtures(), anomalies, ownership, oop, logging.NewNop())

	summary, err := service.Run(context.Background(), testMatchID)
	if err != nil {
		t.Fatalf("run match alerts: %v", err)
	}
	if !summary.Flagged() {
		t.Fatalf("expected flagged summary")
	}
	if summary.Ownership.Status != ReportStatusFlagged || summary.OutOfPosition.Status != ReportStatusFlagged {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Fixture.HomeTeamName != "Brentford" || summary.Fixture.Gameweek != 9 {
		t.Fatalf("expected fixture context, got %+v", summary.Fixture)
	}
}

func TestMatchAlertService_Run_UnknownFixture(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	anomalies, ownership, oop := newDetectors(players, entries)
	service := NewMatchAlertService(matchAlertFixtures(), anomalies, ownership, oop, logging.NewNop())

	_, err := service.Run(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown fixture, got %v", err)
	}
}

func TestMatchAlertService_RunGameweek_StartedFixturesOnly(t *testing.T) {
	t.Parallel()

	players, entries := detectorFixture()
	anomalies, ownership, oop := newDetectors(players, entries)
	service := NewMatchAlertService(matchAlertFixtures(), anomalies, ownership, oop, logging.NewNop())

	summary, err := service.RunGameweek(context.Background(), 9)
	if err != nil {
		t.Fatalf("run gameweek alerts: %v", err)
	}
	if len(summary.Matches) != 1 || summary.Matches[0].MatchID != testMatchID {
		t.Fatalf("expected only the started fixture, got %+v", summary.Matches)
	}

	if _, err := service.RunGameweek(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for week 0, got %v", err)
	}
}
