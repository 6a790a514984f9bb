package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/gameweek"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

type recordingQueue struct {
	mu      sync.Mutex
	dedups  []string
	paths   []string
	failFor int64
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, payload any, _ time.Duration, deduplicationID string) error {
	job, _ := payload.(MatchAlertJob)
	if q.failFor != 0 && job.MatchID == q.failFor {
		return errors.New("qstash status=503")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paths = append(q.paths, path)
	q.dedups = append(q.dedups, deduplicationID)
	return nil
}

type failingWriter struct{}

func (failingWriter) ReplaceLive(context.Context, gameweek.Tables) error {
	return errConnRefused
}

func newIngestion(queue JobQueue) (*IngestionService, *memory.PlayerRepository, *memory.SnapshotRepository) {
	players := memory.NewPlayerRepository(nil)
	writer := memory.NewLiveWriter(players, memory.NewFixtureRepository(nil), memory.NewLineupRepository(nil))
	snapshots := memory.NewSnapshotRepository()
	logger := logging.NewNop()
	var dispatcher *AlertDispatchService
	if queue != nil {
		dispatcher = NewAlertDispatchService(queue, 2, logger)
	}
	return NewIngestionService(writer, NewSnapshotService(snapshots, nil, logger), dispatcher, logger), players, snapshots
}

func TestIngestionService_ApplyGameweek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queue := &recordingQueue{}
	service, players, _ := newIngestion(queue)

	result, err := service.ApplyGameweek(ctx, IngestGameweekInput{
		Season:   memory.SeedSeason,
		Gameweek: memory.SeedGameweek,
		Tables:   memory.SeedTables(),
	})
	if err != nil {
		t.Fatalf("apply gameweek: %v", err)
	}
	if result.Players != len(memory.SeedPlayers()) || result.Lineups != len(memory.SeedLineups()) {
		t.Fatalf("unexpected counts %+v", result)
	}

	ids := make([]int64, 0, len(memory.SeedPlayers()))
	for _, p := range memory.SeedPlayers() {
		ids = append(ids, p.ID)
	}
	live, _ := players.GetByIDs(ctx, ids)
	if len(live) != len(memory.SeedPlayers()) {
		t.Fatalf("expected live players replaced, got %d", len(live))
	}

	// only the started fixture is queued
	if result.Dispatch.Queued != 1 || len(queue.dedups) != 1 {
		t.Fatalf("expected one queued job, got %+v", result.Dispatch)
	}
	if queue.dedups[0] != "match-alerts-2025-26-7-61" || queue.paths[0] != MatchAlertsJobPath {
		t.Fatalf("unexpected job %s %s", queue.paths[0], queue.dedups[0])
	}
}

func TestIngestionService_ApplyGameweek_RejectsInvalidTables(t *testing.T) {
	t.Parallel()

	service, _, snapshots := newIngestion(nil)
	tables := memory.SeedTables()
	tables.Players = append(tables.Players, player.Player{ID: 16, Name: "dup", Position: player.PositionMidfielder})

	_, err := service.ApplyGameweek(context.Background(), IngestGameweekInput{Season: "2025/26", Gameweek: 7, Tables: tables})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	keys, _ := snapshots.ListKeys(context.Background(), "2025/26")
	if len(keys) != 0 {
		t.Fatalf("invalid payload must not be snapshotted")
	}

	_, err = service.ApplyGameweek(context.Background(), IngestGameweekInput{Gameweek: 7, Tables: memory.SeedTables()})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing season: expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestionService_ApplyGameweek_StoreUnavailable(t *testing.T) {
	t.Parallel()

	snapshots := memory.NewSnapshotRepository()
	logger := logging.NewNop()
	service := NewIngestionService(failingWriter{}, NewSnapshotService(snapshots, nil, logger), nil, logger)

	_, err := service.ApplyGameweek(context.Background(), IngestGameweekInput{Season: "2025/26", Gameweek: 7, Tables: memory.SeedTables()})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestAlertDispatchService_CountsFailures(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{failFor: 3}
	service := NewAlertDispatchService(queue, 3, logging.NewNop())

	jobs := make([]MatchAlertJob, 0, 5)
	for i := int64(1); i <= 5; i++ {
		jobs = append(jobs, MatchAlertJob{Season: "2025/26", Gameweek: 8, MatchID: i})
	}
	result, err := service.DispatchMatchAlerts(context.Background(), jobs)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result.Queued != 4 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	sort.Strings(queue.dedups)
	if queue.dedups[0] != "match-alerts-2025-26-8-1" {
		t.Fatalf("unexpected dedup id %s", queue.dedups[0])
	}
}
