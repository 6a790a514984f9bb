package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
)

// PositionalRepository applies increments under one mutex so concurrent
// extraction runs never lose updates.
type PositionalRepository struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
	touch  map[string]time.Time
	now    func() time.Time
}

func NewPositionalRepository() *PositionalRepository {
	return &PositionalRepository{
		counts: make(map[string]map[string]int64),
		touch:  make(map[string]time.Time),
		now:    time.Now,
	}
}

func (r *PositionalRepository) Increment(_ context.Context, increments []positional.Increment) error {
	for _, inc := range increments {
		if err := inc.Validate(); err != nil {
			return fmt.Errorf("invalid positional increment: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for _, inc := range increments {
		positions, ok := r.counts[inc.Name]
		if !ok {
			positions = make(map[string]int64)
			r.counts[inc.Name] = positions
		}
		positions[inc.Position] += inc.Delta
		r.touch[inc.Name] = now
	}
	return nil
}

func (r *PositionalRepository) GetByName(_ context.Context, name string) (positional.Baseline, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	positions, ok := r.counts[name]
	if !ok {
		return positional.Baseline{}, false, nil
	}
	out := make(map[string]int64, len(positions))
	for k, v := range positions {
		out[k] = v
	}
	return positional.Baseline{PlayerName: name, Positions: out, UpdatedAt: r.touch[name]}, true, nil
}
