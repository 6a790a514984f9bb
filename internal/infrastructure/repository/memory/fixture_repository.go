package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures []fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	r := &FixtureRepository{}
	r.Replace(fixtures)
	return r
}

func (r *FixtureRepository) Replace(fixtures []fixture.Fixture) {
	items := make([]fixture.Fixture, len(fixtures))
	copy(items, fixtures)

	r.mu.Lock()
	r.fixtures = items
	r.mu.Unlock()
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID int64) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.fixtures {
		if f.ID == fixtureID {
			return f, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r *FixtureRepository) ListByGameweek(_ context.Context, gameweek int) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, f := range r.fixtures {
		if f.Gameweek == gameweek {
			out = append(out, f)
		}
	}
	return out, nil
}
