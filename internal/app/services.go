package app

import (
	"github.com/riskibarqy/pl-lineup-bot/external/fotmob"
	"github.com/riskibarqy/pl-lineup-bot/external/jobqueue"
	"github.com/riskibarqy/pl-lineup-bot/internal/config"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/snapshot"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/export"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

// Services holds every use case built over one RecordStore.
type Services struct {
	Anomaly       *usecase.AnomalyService
	Ownership     *usecase.OwnershipService
	OutOfPosition *usecase.OutOfPositionService
	Baseline      *usecase.BaselineService
	Snapshot      *usecase.SnapshotService
	Ingestion     *usecase.IngestionService
	MatchAlerts   *usecase.MatchAlertService
}

func EngineThresholds(cfg config.Config) anomaly.Thresholds {
	return anomaly.Thresholds{
		MinutesFloor:       cfg.AnomalyMinMinutes,
		AttackMultiplier:   cfg.AnomalyAttackMultiplier,
		OwnershipThreshold: cfg.OwnershipAlertThreshold,
	}.Normalize()
}

func PositionalRule(cfg config.Config) positional.Rule {
	rule := positional.DefaultRule()
	rule.MaxPositionLength = cfg.PositionCodeMaxLength
	rule.MaxDepth = cfg.PositionExtractMaxDepth
	return rule
}

func NewServices(cfg config.Config, store *RecordStore, logger *logging.Logger) Services {
	if logger == nil {
		logger = logging.Default()
	}
	thresholds := EngineThresholds(cfg)

	anomalies := usecase.NewAnomalyService(store.Lineups, store.Players, thresholds, logger)
	ownership := usecase.NewOwnershipService(store.Lineups, store.Players, thresholds, logger)
	outOfPosition := usecase.NewOutOfPositionService(store.Lineups, store.Players)

	var exporter snapshot.Exporter
	if cfg.ExportEnabled {
		exporter = export.NewCSVExporter(cfg.ExportDir)
	}
	snapshots := usecase.NewSnapshotService(store.Snapshots, exporter, logger)

	var dispatcher *usecase.AlertDispatchService
	if cfg.IngestDispatchAlerts {
		dispatcher = usecase.NewAlertDispatchService(newJobQueue(cfg, logger), cfg.AlertDispatchWorkers, logger).
			WithDelay(cfg.AlertDispatchDelay)
	}

	return Services{
		Anomaly:       anomalies,
		Ownership:     ownership,
		OutOfPosition: outOfPosition,
		Baseline:      usecase.NewBaselineService(store.Positional, store.Players, PositionalRule(cfg), thresholds, logger),
		Snapshot:      snapshots,
		Ingestion:     usecase.NewIngestionService(store.Writer, snapshots, dispatcher, logger),
		MatchAlerts:   usecase.NewMatchAlertService(store.Fixtures, anomalies, ownership, outOfPosition, logger),
	}
}

// NewPositionalSeeder wires the FotMob client into the positional seeder.
func NewPositionalSeeder(cfg config.Config, services Services, logger *logging.Logger) *usecase.PositionalSeedService {
	client := fotmob.NewClient(fotmob.ClientConfig{
		BaseURL:           cfg.FotMobBaseURL,
		UserAgent:         cfg.FotMobUserAgent,
		Timeout:           cfg.FotMobTimeout,
		MaxRetries:        cfg.FotMobMaxRetries,
		RequestsPerSecond: cfg.FotMobRequestsPerSecond,
		Logger:            logger,
		CircuitBreaker:    cfg.FotMobCircuit,
	})
	return usecase.NewPositionalSeedService(client, services.Baseline, logger)
}

func newJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		logger.Warn("INGEST_DISPATCH_ALERTS is on but QStash is disabled, alert jobs are dropped")
		return usecase.NewNoopJobQueue()
	}
	return jobqueue.NewPublisher(jobqueue.Config{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)
}
