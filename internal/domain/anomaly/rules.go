package anomaly

import (
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

const (
	// MinutesFloor is the sample size below which a rate baseline is undefined.
	MinutesFloor = 300
	// AttackMultiplier is how many times the baseline a match must reach to be flagged.
	AttackMultiplier = 2.0
	// OwnershipThreshold marks a player as highly owned (percent, inclusive).
	OwnershipThreshold = 20.0

	minutesPerMatch = 90.0
)

// Thresholds tunes both detectors; the zero value is replaced by the defaults.
type Thresholds struct {
	MinutesFloor       int
	AttackMultiplier   float64
	OwnershipThreshold float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinutesFloor:       MinutesFloor,
		AttackMultiplier:   AttackMultiplier,
		OwnershipThreshold: OwnershipThreshold,
	}
}

func (t Thresholds) Normalize() Thresholds {
	defaults := DefaultThresholds()
	if t.MinutesFloor <= 0 {
		t.MinutesFloor = defaults.MinutesFloor
	}
	if t.AttackMultiplier <= 0 {
		t.AttackMultiplier = defaults.AttackMultiplier
	}
	if t.OwnershipThreshold <= 0 {
		t.OwnershipThreshold = defaults.OwnershipThreshold
	}
	return t
}

// RateBaseline returns goals+assists per 90 minutes. ok is false when minutes
// are under the floor; such players are excluded rather than scored as zero.
func (t Thresholds) RateBaseline(goals, assists, minutes int) (rate float64, ok bool) {
	if minutes < t.MinutesFloor || minutes <= 0 {
		return 0, false
	}
	return float64(goals+assists) / (float64(minutes) / minutesPerMatch), true
}

// IsAttackingOutlier reports matchAttack >= multiplier*baseline, never for a zero match.
func (t Thresholds) IsAttackingOutlier(matchAttack int, baseline float64) bool {
	if matchAttack <= 0 {
		return false
	}
	return float64(matchAttack) >= t.AttackMultiplier*baseline
}

func (t Thresholds) IsHighlyOwned(ownershipPct float64) bool {
	return ownershipPct >= t.OwnershipThreshold
}

// AttackingAlert flags a player whose match output beat the baseline multiple.
type AttackingAlert struct {
	PlayerID    int64
	Name        string
	Position    player.Position
	Baseline    float64
	MatchAttack int
}

func (a AttackingAlert) Line() string {
	return fmt.Sprintf("%s (%s): abnormal attacking output, %d vs %.2f per 90 baseline", a.Name, a.Position, a.MatchAttack, a.Baseline)
}

// BenchedAlert flags a highly-owned player with no minutes in the match.
type BenchedAlert struct {
	PlayerID     int64
	Name         string
	OwnershipPct float64
}

func (a BenchedAlert) Line() string {
	return fmt.Sprintf("%s (%.1f%% owned) did not start", a.Name, a.OwnershipPct)
}
