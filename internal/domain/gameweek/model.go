package gameweek

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

// MaxGameweek bounds week numbers for a 38-round league.
const MaxGameweek = 38

// Tables is one refresh worth of the three latest-only record kinds.
type Tables struct {
	Players  []player.Player
	Fixtures []fixture.Fixture
	Lineups  []lineup.Entry
}

// Clone returns a copy sharing no backing arrays with t.
func (t Tables) Clone() Tables {
	return Tables{
		Players:  cloneSlice(t.Players),
		Fixtures: cloneSlice(t.Fixtures),
		Lineups:  cloneSlice(t.Lineups),
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Validate checks every record and rejects duplicate keys.
func (t Tables) Validate() error {
	var errs []error

	playerIDs := make(map[int64]struct{}, len(t.Players))
	for _, p := range t.Players {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := playerIDs[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate player id %d", p.ID))
		}
		playerIDs[p.ID] = struct{}{}
	}

	fixtureIDs := make(map[int64]struct{}, len(t.Fixtures))
	for _, f := range t.Fixtures {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := fixtureIDs[f.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate fixture id %d", f.ID))
		}
		fixtureIDs[f.ID] = struct{}{}
	}

	type lineupKey struct{ match, player int64 }
	lineupKeys := make(map[lineupKey]struct{}, len(t.Lineups))
	for _, e := range t.Lineups {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		key := lineupKey{e.MatchID, e.PlayerID}
		if _, dup := lineupKeys[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate lineup entry match=%d player=%d", e.MatchID, e.PlayerID))
		}
		lineupKeys[key] = struct{}{}
	}

	return errors.Join(errs...)
}

func ValidateWeek(week int) error {
	if week < 1 || week > MaxGameweek {
		return fmt.Errorf("gameweek must be within 1..%d, got %d", MaxGameweek, week)
	}
	return nil
}

// Writer replaces the live tables wholesale.
type Writer interface {
	ReplaceLive(ctx context.Context, tables Tables) error
}
