package lineup

import (
	"fmt"
	"strings"
)

// Entry is a sparse participation fact: one row per player named for a match.
// Minutes of 0 means named but unused.
type Entry struct {
	MatchID  int64
	PlayerID int64
	Minutes  int
	// Slot is the lineup position as published (RB, CDM, ST...); optional.
	Slot string
}

func (e Entry) Validate() error {
	if e.MatchID <= 0 {
		return fmt.Errorf("lineup entry match id must be greater than zero")
	}
	if e.PlayerID <= 0 {
		return fmt.Errorf("lineup entry player id must be greater than zero")
	}
	if e.Minutes < 0 {
		return fmt.Errorf("lineup entry minutes must not be negative, match=%d player=%d", e.MatchID, e.PlayerID)
	}
	return nil
}

func (e Entry) Played() bool {
	return e.Minutes > 0
}

// StartedIDs returns the players with any minutes in the given rows.
func StartedIDs(entries []Entry) map[int64]struct{} {
	out := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.Played() {
			out[e.PlayerID] = struct{}{}
		}
	}
	return out
}

// UniquePlayerIDs keeps first-seen order.
func UniquePlayerIDs(entries []Entry) []int64 {
	seen := make(map[int64]struct{}, len(entries))
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.PlayerID]; ok {
			continue
		}
		seen[e.PlayerID] = struct{}{}
		out = append(out, e.PlayerID)
	}
	return out
}

func NormalizeSlot(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
