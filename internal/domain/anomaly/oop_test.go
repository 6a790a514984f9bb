package anomaly

import (
	"testing"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

func TestSlotCategory(t *testing.T) {
	cases := map[string]player.Position{
		"rb":   player.PositionDefender,
		" CDM": player.PositionMidfielder,
		"ST":   player.PositionForward,
		"GK":   player.PositionGoalkeeper,
		"mid":  player.PositionMidfielder,
	}
	for slot, want := range cases {
		got, ok := SlotCategory(slot)
		if !ok || got != want {
			t.Fatalf("slot %q: got %q ok=%v, want %q", slot, got, ok, want)
		}
	}
	if _, ok := SlotCategory("Sub"); ok {
		t.Fatalf("expected unknown slot to be rejected")
	}
	if _, ok := SlotCategory(""); ok {
		t.Fatalf("expected empty slot to be rejected")
	}
}

func TestOutOfPosition_Line(t *testing.T) {
	trent := player.Player{ID: 7, Name: "Alexander-Arnold", Position: player.PositionDefender}

	alert, ok := OutOfPosition(trent, lineup.Entry{MatchID: 1, PlayerID: 7, Minutes: 90, Slot: "CM"})
	if !ok {
		t.Fatalf("expected DEF lined up at CM to be flagged")
	}
	want := "Alexander-Arnold OOP (DEF -> MID): Likely +0.5 fouls, +0.8 (new role opportunities) shots on target."
	if got := alert.Line(); got != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", got, want)
	}

	winger := player.Player{ID: 8, Name: "Saka", Position: player.PositionMidfielder}
	alert, ok = OutOfPosition(winger, lineup.Entry{MatchID: 1, PlayerID: 8, Slot: "RWB"})
	if !ok {
		t.Fatalf("expected MID lined up at RWB to be flagged")
	}
	want = "Saka OOP (MID -> DEF): Likely +1.2 (more defensive duties) fouls, +0.3 shots on target."
	if got := alert.Line(); got != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", got, want)
	}

	if _, ok := OutOfPosition(trent, lineup.Entry{MatchID: 1, PlayerID: 7, Slot: "RB"}); ok {
		t.Fatalf("matching category must not be flagged")
	}
	if _, ok := OutOfPosition(trent, lineup.Entry{MatchID: 1, PlayerID: 7}); ok {
		t.Fatalf("missing slot must not be flagged")
	}
}
