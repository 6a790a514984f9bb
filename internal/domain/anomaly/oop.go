package anomaly

import (
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

var slotCategory = map[string]player.Position{
	"G": player.PositionGoalkeeper, "GK": player.PositionGoalkeeper, "GKP": player.PositionGoalkeeper,

	"D": player.PositionDefender, "DEF": player.PositionDefender,
	"CB": player.PositionDefender, "LCB": player.PositionDefender, "RCB": player.PositionDefender,
	"LB": player.PositionDefender, "RB": player.PositionDefender,
	"LWB": player.PositionDefender, "RWB": player.PositionDefender, "SW": player.PositionDefender,

	"M": player.PositionMidfielder, "MID": player.PositionMidfielder,
	"DM": player.PositionMidfielder, "CDM": player.PositionMidfielder,
	"CM": player.PositionMidfielder, "LCM": player.PositionMidfielder, "RCM": player.PositionMidfielder,
	"AM": player.PositionMidfielder, "CAM": player.PositionMidfielder,
	"LM": player.PositionMidfielder, "RM": player.PositionMidfielder,

	"F": player.PositionForward, "FW": player.PositionForward, "FWD": player.PositionForward,
	"ST": player.PositionForward, "CF": player.PositionForward, "SS": player.PositionForward,
	"LW": player.PositionForward, "RW": player.PositionForward,
	"LF": player.PositionForward, "RF": player.PositionForward,
}

// SlotCategory maps a published lineup slot onto a registered position.
func SlotCategory(slot string) (player.Position, bool) {
	normalized := lineup.NormalizeSlot(slot)
	if normalized == "" {
		return "", false
	}
	if p, ok := slotCategory[normalized]; ok {
		return p, true
	}
	return player.NormalizePosition(normalized)
}

// OutOfPositionAlert is a player lined up outside their registered category.
type OutOfPositionAlert struct {
	PlayerID   int64
	Name       string
	Registered player.Position
	Slot       player.Position
}

// OutOfPosition reports whether the entry's slot category differs from p's.
// Entries without a recognisable slot are never flagged.
func OutOfPosition(p player.Player, e lineup.Entry) (OutOfPositionAlert, bool) {
	slot, ok := SlotCategory(e.Slot)
	if !ok || slot == p.Position {
		return OutOfPositionAlert{}, false
	}
	return OutOfPositionAlert{
		PlayerID:   p.ID,
		Name:       p.Name,
		Registered: p.Position,
		Slot:       slot,
	}, true
}

func (a OutOfPositionAlert) FoulDelta() string {
	if a.Slot == player.PositionDefender {
		return "+1.2 (more defensive duties)"
	}
	return "+0.5"
}

func (a OutOfPositionAlert) ShotDelta() string {
	if a.Slot == player.PositionMidfielder {
		return "+0.8 (new role opportunities)"
	}
	return "+0.3"
}

func (a OutOfPositionAlert) Line() string {
	return fmt.Sprintf("%s OOP (%s -> %s): Likely %s fouls, %s shots on target.",
		a.Name, a.Registered, a.Slot, a.FoulDelta(), a.ShotDelta())
}
