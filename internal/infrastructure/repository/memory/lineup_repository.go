package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
)

type LineupRepository struct {
	mu      sync.RWMutex
	byMatch map[int64][]lineup.Entry
}

func NewLineupRepository(entries []lineup.Entry) *LineupRepository {
	r := &LineupRepository{}
	r.Replace(entries)
	return r
}

func (r *LineupRepository) Replace(entries []lineup.Entry) {
	byMatch := make(map[int64][]lineup.Entry)
	for _, e := range entries {
		byMatch[e.MatchID] = append(byMatch[e.MatchID], e)
	}

	r.mu.Lock()
	r.byMatch = byMatch
	r.mu.Unlock()
}

func (r *LineupRepository) ListByMatch(_ context.Context, matchID int64) ([]lineup.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byMatch[matchID]
	out := make([]lineup.Entry, 0, len(items))
	out = append(out, items...)
	return out, nil
}
