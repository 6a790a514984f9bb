package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/pl-lineup-bot/internal/config"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/fixture"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/lineup"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	cacherepo "github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/pl-lineup-bot/internal/platform/cache"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// RecordStore is the set of repositories every component receives at
// construction.
type RecordStore struct {
	Players    player.Repository
	Fixtures   fixture.Repository
	Lineups    lineup.Repository
	Writer     gameweek.Writer
	Snapshots  snapshot.Repository
	Positional positional.Repository

	db *sqlx.DB
}

func (s *RecordStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// OpenRecordStore returns a Postgres-backed store when DB_URL is set and an
// in-memory store seeded with a sample week otherwise. Live-table reads are
// wrapped in the TTL cache when enabled.
func OpenRecordStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (*RecordStore, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var store *RecordStore
	if cfg.UsesDatabase() {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DBSeedEnabled {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		store = &RecordStore{
			Players:    postgres.NewPlayerRepository(db),
			Fixtures:   postgres.NewFixtureRepository(db),
			Lineups:    postgres.NewLineupRepository(db),
			Writer:     postgres.NewLiveWriter(db),
			Snapshots:  postgres.NewSnapshotRepository(db),
			Positional: postgres.NewPositionalRepository(db),
			db:         db,
		}
		logger.InfoContext(ctx, "record store opened", "backend", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	} else {
		players := memory.NewPlayerRepository(memory.SeedPlayers())
		fixtures := memory.NewFixtureRepository(memory.SeedFixtures())
		lineups := memory.NewLineupRepository(memory.SeedLineups())
		store = &RecordStore{
			Players:    players,
			Fixtures:   fixtures,
			Lineups:    lineups,
			Writer:     memory.NewLiveWriter(players, fixtures, lineups),
			Snapshots:  memory.NewSnapshotRepository(),
			Positional: memory.NewPositionalRepository(),
		}
		logger.WarnContext(ctx, "DB_URL not set, using in-memory record store with sample data")
	}

	if cfg.CacheEnabled {
		c := basecache.NewStore(cfg.CacheTTL)
		store.Players = cacherepo.NewPlayerRepository(store.Players, c)
		store.Fixtures = cacherepo.NewFixtureRepository(store.Fixtures, c)
		store.Lineups = cacherepo.NewLineupRepository(store.Lineups, c)
		store.Writer = cacherepo.NewLiveWriter(store.Writer, c)
	}
	return store, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := DatabaseURL(cfg)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
