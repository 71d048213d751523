package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mkm418/padel-intelligence/external/playtomic"
	"github.com/mkm418/padel-intelligence/internal/config"
	"github.com/mkm418/padel-intelligence/internal/domain/graph"
	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/infrastructure/checkpoint"
	"github.com/mkm418/padel-intelligence/internal/infrastructure/repository/memory"
	"github.com/mkm418/padel-intelligence/internal/infrastructure/repository/postgres"
	"github.com/mkm418/padel-intelligence/internal/platform/id"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/platform/resilience"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Options struct {
	// InMemoryFallback keeps match history in process when DB_URL is empty.
	InMemoryFallback bool
}

// Runtime owns the reconciliation service and everything that has to be
// closed after it.
type Runtime struct {
	Service *usecase.ReconciliationService
	Store   string

	db *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	runtime := &Runtime{Store: StoreNone}

	var (
		matches    match.Repository
		aggregates graph.Repository
	)
	switch {
	case cfg.DBURL != "":
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runtime.db = db
		runtime.Store = StorePostgres
		matches = postgres.NewMatchRepository(db)
		aggregates = postgres.NewAggregateRepository(db)
	case opts.InMemoryFallback:
		runtime.Store = StoreMemory
		matches = memory.NewMatchRepository()
		aggregates = memory.NewAggregateRepository()
	}

	source := playtomic.NewClient(playtomic.ClientConfig{
		HTTPClient:        newHTTPClient(cfg.PlaytomicTimeout),
		BaseURL:           cfg.PlaytomicBaseURL,
		Token:             cfg.PlaytomicToken,
		Timeout:           cfg.PlaytomicTimeout,
		MaxRetries:        cfg.PlaytomicMaxRetries,
		RequestsPerSecond: cfg.PlaytomicRequestsPerSecond,
		TenantCacheTTL:    cfg.PlaytomicTenantCacheTTL,
		Logger:            logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PlaytomicCircuitEnabled,
			FailureThreshold: cfg.PlaytomicCircuitFailureCount,
			OpenTimeout:      cfg.PlaytomicCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PlaytomicCircuitHalfOpenMaxReq,
		},
	})

	runtime.Service = usecase.NewReconciliationService(
		ReconciliationConfig(cfg),
		checkpoint.NewLoader(cfg.CheckpointParallelism, logger),
		checkpoint.NewExportWriter(logger),
		source,
		matches,
		aggregates,
		id.NewUUIDGenerator(),
		logger,
	)

	logger.Info("reconciliation runtime ready",
		"store", runtime.Store,
		"tenants", len(cfg.PlaytomicTenantIDs),
		"checkpoint_dir", cfg.CheckpointDir,
		"export_dir", cfg.ExportDir,
	)
	return runtime, nil
}

// ReconciliationConfig maps runtime configuration onto the usecase settings.
func ReconciliationConfig(cfg config.Config) usecase.ReconciliationConfig {
	return usecase.ReconciliationConfig{
		CheckpointDir:    cfg.CheckpointDir,
		ExportDir:        cfg.ExportDir,
		TenantIDs:        cfg.PlaytomicTenantIDs,
		PageSize:         cfg.PlaytomicPageSize,
		MaxPages:         cfg.PlaytomicMaxPages,
		BatchSize:        cfg.SyncBatchSize,
		BatchDelay:       cfg.SyncBatchDelay,
		OverlapWindow:    cfg.SyncOverlapWindow,
		InitialLookback:  cfg.SyncInitialLookback,
		WriteChunkSize:   cfg.SyncWriteChunkSize,
		HistoryChunkSize: cfg.SyncHistoryChunkSize,
	}
}

func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}
