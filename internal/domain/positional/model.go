package positional

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Observation is one (display name, position code) pair seen in a document.
type Observation struct {
	Name     string
	Position string
}

// Baseline is the per-player histogram of observed positions.
type Baseline struct {
	PlayerName string
	Positions  map[string]int64
	UpdatedAt  time.Time
}

func (b Baseline) Total() int64 {
	var total int64
	for _, count := range b.Positions {
		total += count
	}
	return total
}

// SortedPositions orders positions by count, most observed first; ties
// resolve alphabetically.
func (b Baseline) SortedPositions() []string {
	keys := make([]string, 0, len(b.Positions))
	for k := range b.Positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := b.Positions[keys[i]], b.Positions[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Primary returns the most observed position.
func (b Baseline) Primary() (string, int64, bool) {
	keys := b.SortedPositions()
	if len(keys) == 0 {
		return "", 0, false
	}
	return keys[0], b.Positions[keys[0]], true
}

// Increment is a pending counter delta for one (name, position).
type Increment struct {
	Name     string
	Position string
	Delta    int64
}

func (i Increment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if strings.TrimSpace(i.Position) == "" {
		return fmt.Errorf("position is required for %q", i.Name)
	}
	if i.Delta <= 0 {
		return fmt.Errorf("increment delta must be > 0, got %d", i.Delta)
	}
	return nil
}

// Aggregate folds observations into deltas, preserving first-seen order.
func Aggregate(observations []Observation) []Increment {
	index := make(map[Observation]int, len(observations))
	out := make([]Increment, 0, len(observations))
	for _, o := range observations {
		if i, ok := index[o]; ok {
			out[i].Delta++
			continue
		}
		index[o] = len(out)
		out = append(out, Increment{Name: o.Name, Position: o.Position, Delta: 1})
	}
	return out
}

// Repository is increment-only: counters never decrease.
type Repository interface {
	Increment(ctx context.Context, increments []Increment) error
	GetByName(ctx context.Context, name string) (Baseline, bool, error)
}
