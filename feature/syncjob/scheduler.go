package syncjob

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-sync/feature/syncjob/reconcile"

	"go.uber.org/zap"
)

// Scheduler triggers runs at a fixed interval.
type Scheduler struct {
	service  *Service
	interval time.Duration
	opts     reconcile.Options
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler running opts every interval.
func NewScheduler(service *Service, interval time.Duration, opts reconcile.Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{service: service, interval: interval, opts: opts, logger: logger}
}

// Start starts the loop. The first run happens after one interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning || s.interval <= 0 {
		return
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Sync scheduler started", zap.Duration("interval", s.interval))
}

// Stop cancels a run in progress and waits for the loop to end or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.service.Run(ctx, s.opts)
	switch {
	case errors.Is(err, reconcile.ErrSyncInProgress):
		s.logger.Info("Scheduled sync skipped, a run is in progress")
	case err != nil:
		s.logger.Error("Scheduled sync failed", zap.Error(err))
	default:
		s.logger.Info("Scheduled sync finished",
			zap.String("run_id", report.RunID),
			zap.Int("updated", report.Updated),
			zap.Int("created", report.Created),
		)
	}
}
