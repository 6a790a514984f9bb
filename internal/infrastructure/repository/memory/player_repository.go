package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players []player.Player
	index   map[int64]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	r := &PlayerRepository{}
	r.Replace(players)
	return r
}

// Replace swaps the whole table.
func (r *PlayerRepository) Replace(players []player.Player) {
	items := make([]player.Player, len(players))
	copy(items, players)
	index := make(map[int64]player.Player, len(items))
	for _, p := range items {
		index[p.ID] = p
	}

	r.mu.Lock()
	r.players = items
	r.index = index
	r.mu.Unlock()
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []int64) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	seen := make(map[int64]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.index[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlayerRepository) ListByMinOwnership(_ context.Context, minPct float64) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, p := range r.players {
		if p.OwnershipPct >= minPct {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OwnershipPct > out[j].OwnershipPct
	})
	return out, nil
}
