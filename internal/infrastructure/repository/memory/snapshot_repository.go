package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
)

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[snapshot.Key]snapshot.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[snapshot.Key]snapshot.Snapshot)}
}

func (r *SnapshotRepository) Upsert(_ context.Context, s snapshot.Snapshot) error {
	s.Tables = s.Tables.Clone()

	r.mu.Lock()
	r.items[s.Key] = s
	r.mu.Unlock()
	return nil
}

func (r *SnapshotRepository) Get(_ context.Context, key snapshot.Key) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[key]
	if !ok {
		return snapshot.Snapshot{}, false, nil
	}
	item.Tables = item.Tables.Clone()
	return item, true, nil
}

func (r *SnapshotRepository) ListKeys(_ context.Context, season string) ([]snapshot.Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]snapshot.Key, 0)
	for key := range r.items {
		if key.Season == season {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gameweek < out[j].Gameweek })
	return out, nil
}
