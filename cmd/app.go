package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/lock"
	"catalog-sync/core/logger"
	"catalog-sync/core/metrics"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/store"
	"catalog-sync/feature/ers"
	"catalog-sync/feature/syncjob"

	"go.uber.org/zap"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	metrics *metrics.Metrics
}

// newApp loads configuration and connects the catalog backend.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	deps := store.Deps{Bucket: cfg.Storage.Bucket, Logger: l}
	switch cfg.Catalog.Backend {
	case store.BackendObject:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		deps.Storage = client
	case store.BackendDB:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
	}

	st, err := store.New(cfg.Catalog, deps)
	if err != nil {
		return nil, err
	}
	l.Info("Catalog backend ready", zap.String("backend", cfg.Catalog.Backend))

	return &app{cfg: cfg, logger: l, store: st, metrics: metrics.New()}, nil
}

// syncService wires the ERS client, the engine and the run lock.
func (a *app) syncService() (*syncjob.Service, error) {
	client, err := ers.NewClient(a.cfg.ERS, a.logger)
	if err != nil {
		return nil, err
	}

	lockers := lock.Chain{lock.NewLocal()}
	if a.cfg.Redis.Enabled() {
		redisLock, err := lock.NewRedis(a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lockers = append(lockers, redisLock)
		a.logger.Info("Using redis run lock", zap.String("addr", a.cfg.Redis.Addr))
	}

	engine := syncjob.NewEngine(a.cfg.Sync, client, a.store, a.metrics, a.logger)
	return syncjob.NewService(engine, lockers, a.cfg.Sync.RunTimeout(), a.logger), nil
}
