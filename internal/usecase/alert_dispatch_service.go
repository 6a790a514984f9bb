package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
)

const (
	MatchAlertsJobPath          = "/v1/internal/jobs/match-alerts"
	defaultAlertDispatchWorkers = 4
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// MatchAlertJob is the payload posted back to the match-alerts endpoint.
type MatchAlertJob struct {
	Season   string `json:"season"`
	Gameweek int    `json:"gameweek"`
	MatchID  int64  `json:"match_id"`
}

func (j MatchAlertJob) DeduplicationID() string {
	season := strings.NewReplacer("/", "-", " ", "-").Replace(strings.TrimSpace(j.Season))
	return fmt.Sprintf("match-alerts-%s-%d-%d", season, j.Gameweek, j.MatchID)
}

type DispatchResult struct {
	Queued int `json:"queued"`
	Failed int `json:"failed"`
}

type AlertDispatchService struct {
	queue   JobQueue
	workers int
	delay   time.Duration
	logger  *logging.Logger
}

func NewAlertDispatchService(queue JobQueue, workers int, logger *logging.Logger) *AlertDispatchService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if workers <= 0 {
		workers = defaultAlertDispatchWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AlertDispatchService{queue: queue, workers: workers, logger: logger}
}

// WithDelay asks the queue to deliver every job d after it is enqueued.
func (s *AlertDispatchService) WithDelay(d time.Duration) *AlertDispatchService {
	if d > 0 {
		s.delay = d
	}
	return s
}

// DispatchMatchAlerts enqueues one match-alerts job per match. Individual
// enqueue failures are counted, not returned.
func (s *AlertDispatchService) DispatchMatchAlerts(ctx context.Context, jobs []MatchAlertJob) (DispatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AlertDispatchService.DispatchMatchAlerts")
	defer span.End()

	if len(jobs) == 0 {
		return DispatchResult{}, nil
	}

	workerCount := s.workers
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var queued atomic.Int32
	var failed atomic.Int32
	var workers sync.WaitGroup
	for _, job := range jobs {
		job := job
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			dedupID := job.DeduplicationID()
			if err := s.queue.Enqueue(ctx, MatchAlertsJobPath, job, s.delay, dedupID); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "enqueue match alerts failed",
					"match_id", job.MatchID,
					"deduplication_id", dedupID,
					"error", err,
				)
				return
			}
			queued.Add(1)
		}); err != nil {
			workers.Done()
			return DispatchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	return DispatchResult{Queued: int(queued.Load()), Failed: int(failed.Load())}, nil
}
