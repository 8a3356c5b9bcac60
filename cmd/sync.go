package cmd

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/feature/syncjob/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncOpts = reconcile.DefaultOptions()

var noCreate bool

// syncCmd runs one reconciliation from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the catalog with the External Retail System",
	Long: `Fetches the price list from the External Retail System, deduplicates it,
matches entries against the local catalog and persists prices and stock.

Examples:
  # Prices only
  sync

  # Prices and stock for a named warehouse
  sync --sync-stock --warehouse-name "Main store"

  # Show what would change without saving
  sync --dry-run

  # Rebuild matched items from the ERS data
  sync --force`,
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.BoolVar(&syncOpts.Force, "force", false, "Rebuild matched items instead of updating price and stock only")
	f.BoolVar(&syncOpts.SyncStock, "sync-stock", false, "Also synchronize stock levels")
	f.StringVar(&syncOpts.PriceListID, "price-list", "", "Price list id (discovered when empty)")
	f.StringVar(&syncOpts.WarehouseID, "warehouse", "", "Warehouse id or uuid")
	f.StringVar(&syncOpts.WarehouseName, "warehouse-name", "", "Warehouse name")
	f.StringVar(&syncOpts.CompanyHint, "company", "", "Company id or name")
	f.BoolVar(&syncOpts.DryRun, "dry-run", false, "Compute the report without saving")
	f.BoolVar(&syncOpts.LookupMissing, "lookup-missing", false, "Search the ERS by code for catalog items not in the price list")
	f.BoolVar(&noCreate, "no-create", false, "Count unmatched entries as not found instead of creating items")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	svc, err := a.syncService()
	if err != nil {
		return err
	}

	opts := syncOpts
	opts.CreateMissing = !noCreate

	a.logger.Info("Starting catalog sync",
		zap.Bool("sync_stock", opts.SyncStock),
		zap.Bool("force", opts.Force),
		zap.Bool("dry_run", opts.DryRun),
	)

	report, err := svc.Run(ctx, opts)
	if report != nil {
		printSyncReport(a.logger, report)
	}
	if err != nil {
		var syncErr *reconcile.SyncError
		if errors.As(err, &syncErr) && syncErr.Hint != "" {
			return fmt.Errorf("%w (hint: %s)", err, syncErr.Hint)
		}
		return err
	}

	if opts.DryRun {
		a.logger.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// printSyncReport prints a run report using the logger.
func printSyncReport(l *zap.Logger, r *reconcile.Report) {
	l.Info("Sync report",
		zap.String("run_id", r.RunID),
		zap.String("state", string(r.State)),
		zap.Int("total_fetched", r.TotalFetched),
		zap.Int("unique", r.UniqueAfterDedup),
		zap.Int("duplicates_dropped", r.DuplicatesDropped),
		zap.Int("created", r.Created),
		zap.Int("updated", r.Updated),
		zap.Int("price_unchanged", r.PriceUnchanged),
		zap.Int("not_found", r.NotFound),
		zap.Int("skipped_no_price", r.SkippedNoPrice),
		zap.Int("catalog_size", r.CatalogSize),
		zap.Int64("duration_ms", r.DurationMs),
	)

	l.Info("Sources",
		zap.String("price_list", r.PriceListID),
		zap.String("strategy", r.Strategy),
		zap.Bool("degraded", r.Degraded),
		zap.Bool("stock_synced", r.StockSynced),
		zap.String("warehouse", r.WarehouseName),
		zap.Int64s("warehouse_ids", r.WarehouseIDs),
	)

	for _, a := range r.FetchAttempts {
		l.Info("Fetch attempt",
			zap.String("strategy", a.Name),
			zap.String("outcome", a.Outcome),
			zap.Int("pages", a.Pages),
			zap.Int("items", a.Items),
			zap.String("error", a.Error),
		)
	}

	// Show a sample of warnings (max 5 for logger)
	maxShow := min(len(r.Warnings), 5)
	for _, w := range r.Warnings[:maxShow] {
		l.Warn("Sync warning", zap.String("stage", string(w.Stage)), zap.String("message", w.Message))
	}
	if len(r.Warnings) > maxShow {
		l.Info("Additional warnings not shown", zap.Int("count", len(r.Warnings)-maxShow))
	}
}
