package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type WriteSnapshotInput struct {
	Season   string
	Gameweek int
	Tables   gameweek.Tables
}

type SnapshotService struct {
	repo     snapshot.Repository
	exporter snapshot.Exporter
	logger   *logging.Logger
	now      func() time.Time
}

// NewSnapshotService builds the writer; exporter may be nil to disable the
// per-week file dump.
func NewSnapshotService(repo snapshot.Repository, exporter snapshot.Exporter, logger *logging.Logger) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{
		repo:     repo,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Write stores a deep copy of the tables under (season, gameweek), replacing
// any earlier snapshot for that key, then exports the players best-effort.
func (s *SnapshotService) Write(ctx context.Context, input WriteSnapshotInput) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Write")
	defer span.End()

	key := snapshot.Key{Season: strings.TrimSpace(input.Season), Gameweek: input.Gameweek}
	if err := key.Validate(); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item := snapshot.Snapshot{
		Key:        key,
		Tables:     input.Tables.Clone(),
		CapturedAt: s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return snapshot.Snapshot{}, storeError(fmt.Sprintf("upsert snapshot %s", key), err)
	}

	if s.exporter != nil {
		path, err := s.exporter.ExportPlayers(ctx, key.Gameweek, item.Tables.Players)
		if err != nil {
			s.logger.WarnContext(ctx, "gameweek export failed, snapshot kept",
				"season", key.Season,
				"gameweek", key.Gameweek,
				"error", err,
			)
		} else {
			s.logger.InfoContext(ctx, "gameweek export written",
				"gameweek", key.Gameweek,
				"path", path,
				"players", len(item.Tables.Players),
			)
		}
	}

	return item, nil
}

func (s *SnapshotService) Get(ctx context.Context, season string, week int) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Get")
	defer span.End()

	key := snapshot.Key{Season: strings.TrimSpace(season), Gameweek: week}
	if err := key.Validate(); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item, exists, err := s.repo.Get(ctx, key)
	if err != nil {
		return snapshot.Snapshot{}, storeError(fmt.Sprintf("get snapshot %s", key), err)
	}
	if !exists {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot %s", ErrNotFound, key)
	}
	return item, nil
}

func (s *SnapshotService) ListKeys(ctx context.Context, season string) ([]snapshot.Key, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	keys, err := s.repo.ListKeys(ctx, season)
	if err != nil {
		return nil, storeError("list snapshot keys", err)
	}
	return keys, nil
}
