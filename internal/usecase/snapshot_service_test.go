package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	snapshotmock "github.com/riskibarqy/pl-lineup-bot/internal/mocks/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type recordingExporter struct {
	err      error
	gameweek int
	players  []player.Player
}

func (e *recordingExporter) ExportPlayers(_ context.Context, gameweek int, players []player.Player) (string, error) {
	e.gameweek = gameweek
	e.players = players
	if e.err != nil {
		return "", e.err
	}
	return "gameweek_7.csv", nil
}

func TestSnapshotService_Write_DeepCopiesAndUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	exporter := &recordingExporter{}
	service := NewSnapshotService(repo, exporter, logging.NewNop())
	captured := time.Date(2025, 10, 6, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return captured }

	tables := memory.SeedTables()
	first, err := service.Write(ctx, WriteSnapshotInput{Season: " 2025/26 ", Gameweek: 7, Tables: tables})
	if err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	if first.Season != "2025/26" || !first.CapturedAt.Equal(captured) {
		t.Fatalf("unexpected snapshot header %+v", first.Key)
	}

	tables.Players[0].Name = "overwritten live"
	stored, err := service.Get(ctx, "2025/26", 7)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if stored.Tables.Players[0].Name == "overwritten live" {
		t.Fatalf("snapshot must not share memory with the live tables")
	}
	if exporter.gameweek != 7 || len(exporter.players) != len(tables.Players) {
		t.Fatalf("expected export of gameweek 7, got gw=%d players=%d", exporter.gameweek, len(exporter.players))
	}

	tables.Players = tables.Players[:2]
	if _, err := service.Write(ctx, WriteSnapshotInput{Season: "2025/26", Gameweek: 7, Tables: tables}); err != nil {
		t.Fatalf("rewrite snapshot: %v", err)
	}
	keys, err := service.ListKeys(ctx, "2025/26")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected one snapshot for the key, got %d", len(keys))
	}
	stored, _ = service.Get(ctx, "2025/26", 7)
	if len(stored.Tables.Players) != 2 {
		t.Fatalf("expected upsert to replace payload, got %d players", len(stored.Tables.Players))
	}
}

func TestSnapshotService_Write_ExportFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	service := NewSnapshotService(memory.NewSnapshotRepository(), &recordingExporter{err: errors.New("disk full")}, logging.NewNop())
	if _, err := service.Write(context.Background(), WriteSnapshotInput{Season: "2025/26", Gameweek: 3, Tables: memory.SeedTables()}); err != nil {
		t.Fatalf("export failure must not fail the snapshot: %v", err)
	}
}

func TestSnapshotService_Write_ValidatesKey(t *testing.T) {
	t.Parallel()

	service := NewSnapshotService(memory.NewSnapshotRepository(), nil, logging.NewNop())
	for _, input := range []WriteSnapshotInput{
		{Season: "", Gameweek: 1},
		{Season: "2025/26", Gameweek: 0},
		{Season: "2025/26", Gameweek: 39},
	} {
		if _, err := service.Write(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestSnapshotService_Write_StoreUnavailableUsingMockery(t *testing.T) {
	t.Parallel()

	repo := snapshotmock.NewRepository(t)
	exporter := &recordingExporter{}
	service := NewSnapshotService(repo, exporter, logging.NewNop())

	repo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(s snapshot.Snapshot) bool {
			return s.Key == snapshot.Key{Season: "2025/26", Gameweek: 4}
		})).
		Return(errConnRefused).
		Once()

	_, err := service.Write(context.Background(), WriteSnapshotInput{Season: "2025/26", Gameweek: 4, Tables: memory.SeedTables()})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if exporter.players != nil {
		t.Fatalf("export must not run when the snapshot was not stored")
	}
}

func TestSnapshotService_Get_NotFound(t *testing.T) {
	t.Parallel()

	service := NewSnapshotService(memory.NewSnapshotRepository(), nil, logging.NewNop())
	if _, err := service.Get(context.Background(), "2024/25", 38); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
