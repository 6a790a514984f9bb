package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
)

// LiveWriter replaces the three in-memory live tables. Writers are serialised;
// readers may observe one table replaced before the next.
type LiveWriter struct {
	mu       sync.Mutex
	players  *PlayerRepository
	fixtures *FixtureRepository
	lineups  *LineupRepository
}

func NewLiveWriter(players *PlayerRepository, fixtures *FixtureRepository, lineups *LineupRepository) *LiveWriter {
	return &LiveWriter{players: players, fixtures: fixtures, lineups: lineups}
}

func (w *LiveWriter) ReplaceLive(_ context.Context, tables gameweek.Tables) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.fixtures.Replace(tables.Fixtures)
	w.players.Replace(tables.Players)
	w.lineups.Replace(tables.Lineups)
	return nil
}
