package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/player"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

// RecordResult summarises one document fed to the positional extractor.
type RecordResult struct {
	Observations int
	Counters     int
	Visited      int
	Truncated    bool
	Increments   []positional.Increment
}

// AttackingBaseline is the per-90 rate of one player; Defined is false under
// the minutes floor.
type AttackingBaseline struct {
	Player  player.Player
	Rate    float64
	Defined bool
}

type BaselineService struct {
	positionalRepo positional.Repository
	playerRepo     player.Repository
	rule           positional.Rule
	thresholds     anomaly.Thresholds
	logger         *logging.Logger
}

func NewBaselineService(
	positionalRepo positional.Repository,
	playerRepo player.Repository,
	rule positional.Rule,
	thresholds anomaly.Thresholds,
	logger *logging.Logger,
) *BaselineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BaselineService{
		positionalRepo: positionalRepo,
		playerRepo:     playerRepo,
		rule:           rule,
		thresholds:     thresholds.Normalize(),
		logger:         logger,
	}
}

func (s *BaselineService) Rule() positional.Rule {
	return s.rule
}

// RecordDocument extracts every (name, position) pair from doc and adds one
// observation per pair to the positional counters. Malformed nodes are
// ignored; only store failures are returned.
func (s *BaselineService) RecordDocument(ctx context.Context, doc any) (RecordResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BaselineService.RecordDocument")
	defer span.End()

	extraction := s.rule.Extract(doc)
	increments := positional.Aggregate(extraction.Observations)
	result := RecordResult{
		Observations: len(extraction.Observations),
		Counters:     len(increments),
		Visited:      extraction.Visited,
		Truncated:    extraction.Truncated,
		Increments:   increments,
	}
	if extraction.Truncated {
		s.logger.WarnContext(ctx, "positional extraction hit depth limit",
			"max_depth", s.rule.MaxDepth,
			"visited", extraction.Visited,
		)
	}
	if len(increments) == 0 {
		return result, nil
	}

	if err := s.positionalRepo.Increment(ctx, increments); err != nil {
		return RecordResult{}, storeError("increment positional baselines", err)
	}
	return result, nil
}

func (s *BaselineService) GetPositional(ctx context.Context, name string) (positional.Baseline, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BaselineService.GetPositional")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return positional.Baseline{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	item, exists, err := s.positionalRepo.GetByName(ctx, name)
	if err != nil {
		return positional.Baseline{}, storeError("get positional baseline", err)
	}
	if !exists {
		return positional.Baseline{}, fmt.Errorf("%w: positional baseline for %q", ErrNotFound, name)
	}
	return item, nil
}

func (s *BaselineService) AttackingBaseline(ctx context.Context, playerID int64) (AttackingBaseline, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BaselineService.AttackingBaseline")
	defer span.End()

	if playerID <= 0 {
		return AttackingBaseline{}, fmt.Errorf("%w: player_id must be greater than zero", ErrInvalidInput)
	}

	items, err := s.playerRepo.GetByIDs(ctx, []int64{playerID})
	if err != nil {
		return AttackingBaseline{}, storeError(fmt.Sprintf("get player id=%d", playerID), err)
	}
	for _, p := range items {
		if p.ID != playerID {
			continue
		}
		rate, ok := s.thresholds.RateBaseline(p.Goals, p.Assists, p.Minutes)
		return AttackingBaseline{Player: p, Rate: rate, Defined: ok}, nil
	}
	return AttackingBaseline{}, fmt.Errorf("%w: player id=%d", ErrNotFound, playerID)
}
