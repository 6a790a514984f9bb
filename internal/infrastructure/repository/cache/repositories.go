package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	basecache "github.com/riskibarqy/pl-lineup-bot/internal/platform/cache"
)

// Live-table key prefixes; LiveWriter drops all of them after a refresh.
const (
	playerPrefix  = "player:"
	fixturePrefix = "fixture:"
	lineupPrefix  = "lineup:"
)

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int64) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	key := playerPrefix + "ids:" + normalizeIDs(playerIDs)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GetByIDs(ctx, playerIDs)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return orderByIDs(items, playerIDs), nil
}

func (r *PlayerRepository) ListByMinOwnership(ctx context.Context, minPct float64) ([]player.Player, error) {
	key := playerPrefix + "ownership:" + strconv.FormatFloat(minPct, 'f', -1, 64)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByMinOwnership(ctx, minPct)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID int64) (fixture.Fixture, bool, error) {
	key := fixturePrefix + "id:" + strconv.FormatInt(fixtureID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, fixtureID)
		if err != nil {
			return nil, err
		}
		return cachedFixtureByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return fixture.Fixture{}, false, err
	}

	cached, _ := v.(cachedFixtureByID)
	return cached.value, cached.exists, nil
}

type cachedFixtureByID struct {
	value  fixture.Fixture
	exists bool
}

func (r *FixtureRepository) ListByGameweek(ctx context.Context, week int) ([]fixture.Fixture, error) {
	key := fixturePrefix + "gameweek:" + strconv.Itoa(week)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByGameweek(ctx, week)
		if err != nil {
			return nil, err
		}
		return append([]fixture.Fixture(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]fixture.Fixture)
	return append([]fixture.Fixture(nil), items...), nil
}

type LineupRepository struct {
	next  lineup.Repository
	cache *basecache.Store
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store) *LineupRepository {
	return &LineupRepository{next: next, cache: cache}
}

func (r *LineupRepository) ListByMatch(ctx context.Context, matchID int64) ([]lineup.Entry, error) {
	key := lineupPrefix + "match:" + strconv.FormatInt(matchID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return append([]lineup.Entry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]lineup.Entry)
	return append([]lineup.Entry(nil), items...), nil
}

// LiveWriter invalidates every cached live-table read once the refresh lands.
type LiveWriter struct {
	next  gameweek.Writer
	cache *basecache.Store
}

func NewLiveWriter(next gameweek.Writer, cache *basecache.Store) *LiveWriter {
	return &LiveWriter{next: next, cache: cache}
}

func (w *LiveWriter) ReplaceLive(ctx context.Context, tables gameweek.Tables) error {
	err := w.next.ReplaceLive(ctx, tables)
	// A failed replace may still have committed part of the refresh in memory.
	for _, prefix := range []string{playerPrefix, fixturePrefix, lineupPrefix} {
		w.cache.DeletePrefix(ctx, prefix)
	}
	return err
}

func normalizeIDs(ids []int64) string {
	cp := append([]int64(nil), ids...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })

	parts := make([]string, 0, len(cp))
	var last int64
	for i, id := range cp {
		if i > 0 && id == last {
			continue
		}
		parts = append(parts, strconv.FormatInt(id, 10))
		last = id
	}
	return strings.Join(parts, ",")
}

// orderByIDs restores request order for a result cached under the sorted key.
func orderByIDs(items []player.Player, ids []int64) []player.Player {
	byID := make(map[int64]player.Player, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	seen := make(map[int64]struct{}, len(ids))
	out := make([]player.Player, 0, len(items))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}
