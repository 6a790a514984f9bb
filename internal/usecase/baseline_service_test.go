package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	positionalmock "github.com/riskibarqy/pl-lineup-bot/internal/mocks/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

const matchDetailsFixture = `{
	"content": {
		"lineup": {
			"homeTeam": {
				"starters": [
					{"id": 1, "name": "Bruno Fernandes", "positionShort": "MID"},
					{"id": 2, "name": {"fullName": "Bryan Mbeumo"}, "positionShort": "RW"}
				],
				"subs": [
					{"id": 3, "name": "Kobbie Mainoo", "position": "CM", "nested": {"name": "Other", "position": "ZZZZ"}}
				]
			}
		}
	}
}`

func decodeDocument(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func newBaselineService(repo positional.Repository) *BaselineService {
	return NewBaselineService(
		repo,
		memory.NewPlayerRepository(memory.SeedPlayers()),
		positional.DefaultRule(),
		anomaly.DefaultThresholds(),
		logging.NewNop(),
	)
}

func TestBaselineService_RecordDocument_TwiceDoublesCounters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPositionalRepository()
	service := newBaselineService(repo)
	doc := decodeDocument(t, matchDetailsFixture)

	for i := 0; i < 2; i++ {
		result, err := service.RecordDocument(ctx, positional.Subtree(doc, "content", "lineup"))
		if err != nil {
			t.Fatalf("record document: %v", err)
		}
		if result.Observations != 3 {
			t.Fatalf("expected 3 observations, got %d", result.Observations)
		}
	}

	bruno, err := service.GetPositional(ctx, "Bruno Fernandes")
	if err != nil {
		t.Fatalf("get positional: %v", err)
	}
	if bruno.Positions["MID"] != 2 {
		t.Fatalf("expected doubled counter, got %+v", bruno.Positions)
	}
	if _, err := service.GetPositional(ctx, "Other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected nested record must not create a baseline, got %v", err)
	}
}

func TestBaselineService_RecordDocument_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPositionalRepository()
	service := newBaselineService(repo)
	doc := decodeDocument(t, matchDetailsFixture)

	const runs = 20
	var wg sync.WaitGroup
	wg.Add(runs)
	for i := 0; i < runs; i++ {
		go func() {
			defer wg.Done()
			if _, err := service.RecordDocument(ctx, doc); err != nil {
				t.Errorf("record document: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := service.GetPositional(ctx, "Bryan Mbeumo")
	if err != nil {
		t.Fatalf("get positional: %v", err)
	}
	if got.Positions["RW"] != runs {
		t.Fatalf("expected %d observations, got %+v", runs, got.Positions)
	}
}

func TestBaselineService_RecordDocument_NothingToRecordSkipsStoreUsingMockery(t *testing.T) {
	t.Parallel()

	repo := positionalmock.NewRepository(t)
	service := newBaselineService(repo)

	result, err := service.RecordDocument(context.Background(), map[string]any{"name": "Other", "position": "ZZZZ"})
	if err != nil {
		t.Fatalf("record document: %v", err)
	}
	if result.Observations != 0 || result.Visited != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBaselineService_RecordDocument_StoreUnavailableUsingMockery(t *testing.T) {
	t.Parallel()

	repo := positionalmock.NewRepository(t)
	service := newBaselineService(repo)

	repo.
		On("Increment", mock.Anything, []positional.Increment{{Name: "Bruno Fernandes", Position: "MID", Delta: 1}}).
		Return(errConnRefused).
		Once()

	_, err := service.RecordDocument(context.Background(), map[string]any{"name": "Bruno Fernandes", "positionShort": "MID"})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestBaselineService_AttackingBaseline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newBaselineService(memory.NewPositionalRepository())

	haaland, err := service.AttackingBaseline(ctx, 430)
	if err != nil {
		t.Fatalf("attacking baseline: %v", err)
	}
	if !haaland.Defined || math.Abs(haaland.Rate-10.0/(610.0/90.0)) > 1e-9 {
		t.Fatalf("unexpected baseline %+v", haaland)
	}

	odegaard, err := service.AttackingBaseline(ctx, 22)
	if err != nil {
		t.Fatalf("attacking baseline: %v", err)
	}
	if odegaard.Defined {
		t.Fatalf("210 minutes is under the floor, got %+v", odegaard)
	}

	if _, err := service.AttackingBaseline(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.AttackingBaseline(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
