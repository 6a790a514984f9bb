package player

import (
	"fmt"
	"strings"
)

// Position is the registered fantasy position category.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

var positionByElementType = map[int]Position{
	1: PositionGoalkeeper,
	2: PositionDefender,
	3: PositionMidfielder,
	4: PositionForward,
}

// PositionFromElementType maps the fantasy API element_type code.
func PositionFromElementType(elementType int) (Position, bool) {
	p, ok := positionByElementType[elementType]
	return p, ok
}

// NormalizePosition accepts GK/DEF/MID/FWD in any case and common aliases.
func NormalizePosition(raw string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "GK", "GKP", "GOALKEEPER":
		return PositionGoalkeeper, true
	case "DEF", "DEFENDER":
		return PositionDefender, true
	case "MID", "MIDFIELDER":
		return PositionMidfielder, true
	case "FWD", "FW", "FORWARD":
		return PositionForward, true
	default:
		return "", false
	}
}

// Player holds season-cumulative totals as of the latest refresh.
type Player struct {
	ID           int64
	Name         string
	TeamID       int64
	Position     Position
	Minutes      int
	Goals        int
	Assists      int
	TotalPoints  int
	OwnershipPct float64
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player %d name is required", p.ID)
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("player %d has invalid position: %q", p.ID, p.Position)
	}
	if p.Minutes < 0 || p.Goals < 0 || p.Assists < 0 {
		return fmt.Errorf("player %d cumulative totals must not be negative", p.ID)
	}
	if p.OwnershipPct < 0 || p.OwnershipPct > 100 {
		return fmt.Errorf("player %d ownership must be within 0..100, got %.1f", p.ID, p.OwnershipPct)
	}
	return nil
}

// AttackingActions is goals plus assists.
func (p Player) AttackingActions() int {
	return p.Goals + p.Assists
}
