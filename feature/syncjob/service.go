package syncjob

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catalog-sync/core/lock"
	"catalog-sync/core/metrics"
	"catalog-sync/feature/catalog/store"
	"catalog-sync/feature/ers"
	"catalog-sync/feature/syncjob/fetch"
	"catalog-sync/feature/syncjob/reconcile"
	"catalog-sync/feature/syncjob/warehouse"

	"go.uber.org/zap"
)

// LockKey is the run lock key shared by every trigger.
const LockKey = "catalog"

// Runner performs a single reconciliation.
type Runner interface {
	Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error)
}

// Service serializes sync runs and remembers the last report.
type Service struct {
	runner  Runner
	locker  lock.Locker
	timeout time.Duration
	logger  *zap.Logger

	mu   sync.RWMutex
	last *reconcile.Report
}

// NewService creates a sync service. A nil locker means an in-process lock.
func NewService(runner Runner, locker lock.Locker, timeout time.Duration, logger *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runner: runner, locker: locker, timeout: timeout, logger: logger}
}

// NewEngine wires the reconciliation engine from its configuration.
func NewEngine(cfg Config, client *ers.Client, st store.Store, m *metrics.Metrics, logger *zap.Logger) *reconcile.Engine {
	ersCfg := client.Config()
	return reconcile.NewEngine(reconcile.Deps{
		ERS:        client,
		Fetcher:    fetch.New(client, cfg.FetchOptions(), m, logger),
		Warehouses: warehouse.NewResolver(client, cfg.Aliases(), cfg.CacheTTL(), logger),
		Store:      st,
		Metrics:    m,
		Logger:     logger,
	}, reconcile.Settings{
		SalesPointID:  ersCfg.SalesPointID,
		CatalogRootID: ersCfg.CatalogRootID,
		PriceListHint: ersCfg.PriceListHint,
		PageSize:      ersCfg.MaxPageSize,
		Retry:         cfg.RetryPolicy(),
	})
}

// Run performs a run unless another one holds the lock, in which case it fails
// with reconcile.ErrSyncInProgress.
func (s *Service) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error) {
	release, err := s.locker.Acquire(ctx, LockKey)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, reconcile.ErrSyncInProgress
		}
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.Warn("Failed to release run lock", zap.Error(err))
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.runner.Run(ctx, opts)
	if report != nil {
		s.mu.Lock()
		s.last = report
		s.mu.Unlock()
	}
	return report, err
}

// Last returns the report of the most recent run, successful or not.
func (s *Service) Last() (*reconcile.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}
