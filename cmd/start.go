package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-sync/core/loader"
	"catalog-sync/core/logger"
	"catalog-sync/core/middleware/rayid"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/syncjob"
	"catalog-sync/feature/syncjob/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "catalog-sync/docs/swagger"
)

// @title Catalog Sync API
// @version 1.0
// @description API for reconciling the local catalog with the External Retail System.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog sync server",
	Long:  `Starts the HTTP server, the optional sync scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 1. Configuration, logger and catalog backend
		a, err := newApp(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Sync service
		svc, err := a.syncService()
		if err != nil {
			logg.Fatal("Failed to create sync service", zap.Error(err))
		}

		// 3. Initialize Fiber App
		if wt := a.cfg.Server.WriteTimeoutSeconds; wt > 0 && wt <= a.cfg.Sync.RunTimeoutSeconds {
			logg.Warn("server.write_timeout_seconds does not exceed sync.run_timeout_seconds; long POST /sync calls will lose their response",
				zap.Int("write_timeout_seconds", wt),
				zap.Int("run_timeout_seconds", a.cfg.Sync.RunTimeoutSeconds),
			)
		}
		app := fiber.New(a.cfg.Server.FiberConfig())

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(catalog.NewFeature(a.store, logg))
		mgr.Register(syncjob.NewFeature(svc, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Metrics and Swagger Documentation
		app.Get("/metrics", a.metrics.Handler())
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Scheduled runs
		opts := reconcile.DefaultOptions()
		opts.SyncStock = a.cfg.Sync.ScheduleSyncStock
		scheduler := syncjob.NewScheduler(svc, a.cfg.Sync.ScheduleInterval(), opts, logg)
		scheduler.Start(ctx)

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("addr", a.cfg.Server.Addr()))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		if err := scheduler.Stop(stopCtx); err != nil {
			logg.Warn("Scheduler did not stop in time", zap.Error(err))
		}
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
