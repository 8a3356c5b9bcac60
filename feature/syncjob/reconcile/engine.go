package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/metrics"
	"catalog-sync/core/retry"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/store"
	"catalog-sync/feature/ers"
	"catalog-sync/feature/syncjob/fetch"
	"catalog-sync/feature/syncjob/warehouse"

	"go.uber.org/zap"
)

// ERS is the part of the ERS client the engine calls directly.
type ERS interface {
	ListPriceLists(ctx context.Context, salesPointID string, asOf time.Time) ([]ers.PriceList, error)
	StockBalances(ctx context.Context, query ers.StockQuery) ([]ers.StockEntry, error)
	SearchByCode(ctx context.Context, code, priceListID string) (*ers.SearchResult, error)
}

// Fetcher returns the nomenclature of a source.
type Fetcher interface {
	FetchAll(ctx context.Context, src fetch.Source) (fetch.Result, error)
}

// WarehouseResolver picks the warehouses whose stock is synced.
type WarehouseResolver interface {
	Resolve(ctx context.Context, hints warehouse.Hints) (*warehouse.Resolution, error)
}

// Settings are the fixed ERS scope of the engine.
type Settings struct {
	SalesPointID  string
	CatalogRootID string
	// PriceListHint selects a discovered price list by name.
	PriceListHint string
	PageSize      int
	// Retry applies to single ERS calls made outside the fetcher.
	Retry retry.Policy
}

// Deps are the collaborators of the engine.
type Deps struct {
	ERS        ERS
	Fetcher    Fetcher
	Warehouses WarehouseResolver
	Store      store.Store
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine reconciles the catalog with the ERS.
type Engine struct {
	deps     Deps
	settings Settings
	identity *Resolver
	logger   *zap.Logger
}

// NewEngine creates an engine.
func NewEngine(deps Deps, settings Settings) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Engine{deps: deps, settings: settings, identity: NewResolver(), logger: l}
}

// stockView is the resolved stock of a run. A nil view means stock is not synced.
type stockView struct {
	levels      map[string]int
	warehouseID string
}

func (v *stockView) lookup(productID string) (int, bool) {
	if v == nil {
		return 0, false
	}
	return v.levels[productID], true
}

// lookupListed reports whether the balances mentioned the product at all.
func (v *stockView) lookupListed(productID string) (int, bool) {
	if v == nil {
		return 0, false
	}
	n, ok := v.levels[productID]
	return n, ok
}

// Run performs one reconciliation. On failure the returned report is in the
// failed state, the error is a *SyncError and the catalog was not written.
func (e *Engine) Run(ctx context.Context, opts Options) (*Report, error) {
	run := newSyncRun(opts, e.deps.Now)
	log := logger.WithRun(e.logger, run.report.RunID)
	log.Info("Sync run started",
		zap.Bool("force", opts.Force),
		zap.Bool("sync_stock", opts.SyncStock),
		zap.Bool("dry_run", opts.DryRun),
	)

	report, err := e.run(ctx, run, opts, log)
	took := time.Duration(report.DurationMs) * time.Millisecond
	if err != nil {
		e.deps.Metrics.RunFinished(string(StateFailed), took, 0, false)
		log.Error("Sync run failed", zap.Error(err), zap.String("stage", string(err.Stage)))
		return report, err
	}

	e.deps.Metrics.ItemChanges("created", report.Created)
	e.deps.Metrics.ItemChanges("updated", report.Updated)
	e.deps.Metrics.ItemChanges("unchanged", report.PriceUnchanged)
	e.deps.Metrics.ItemChanges("not_found", report.NotFound)
	e.deps.Metrics.ItemChanges("skipped_no_price", report.SkippedNoPrice)
	e.deps.Metrics.RunFinished(string(report.State), took, report.CatalogSize, !report.DryRun)

	log.Info("Sync run finished",
		zap.Int("fetched", report.TotalFetched),
		zap.Int("unique", report.UniqueAfterDedup),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.PriceUnchanged),
		zap.Int("not_found", report.NotFound),
		zap.Int("skipped_no_price", report.SkippedNoPrice),
		zap.Int("warnings", len(report.Warnings)),
		zap.Int64("duration_ms", report.DurationMs),
	)
	return report, nil
}

func (e *Engine) run(ctx context.Context, run *SyncRun, opts Options, log *zap.Logger) (*Report, *SyncError) {
	if e.settings.SalesPointID == "" && e.settings.CatalogRootID == "" && opts.PriceListID == "" {
		return e.abort(run, "set ers.sales_point_id, ers.catalog_root_id or pass a price list id",
			fmt.Errorf("%w: no sales point, catalog root or price list to fetch from", ers.ErrConfiguration))
	}

	snap, err := e.deps.Store.Load(ctx)
	if err != nil {
		return e.abort(run, "check that the catalog backend is reachable and holds valid JSON",
			fmt.Errorf("failed to load catalog: %w", err))
	}

	// Fetch.
	run.enter(StateFetching)
	priceListID, err := e.priceList(ctx, run, opts, log)
	if err != nil {
		return e.failed(run, err)
	}
	run.report.PriceListID = priceListID

	res, err := e.deps.Fetcher.FetchAll(ctx, fetch.Source{
		SalesPointID:  e.settings.SalesPointID,
		CatalogRootID: e.settings.CatalogRootID,
		PriceListID:   priceListID,
		PageSize:      e.settings.PageSize,
	})
	if err != nil {
		return e.failed(run, err)
	}
	run.report.TotalFetched = len(res.Entries)
	run.report.Strategy = res.Strategy
	run.report.Degraded = res.Degraded
	run.report.FetchAttempts = res.Attempts
	if res.Degraded {
		w := run.warn("no fetch strategy returned enough items, using %d items from %q", len(res.Entries), res.Strategy)
		log.Warn("Fetch degraded", zap.String("warning", w.String()))
	}

	// Deduplicate.
	run.enter(StateDeduplicating)
	entries, dropped := Dedup(res.Entries)
	run.report.UniqueAfterDedup = len(entries)
	run.report.DuplicatesDropped = dropped

	// Resolve warehouses and stock.
	run.enter(StateResolving)
	var stock *stockView
	if opts.SyncStock {
		stock, err = e.stock(ctx, run, opts, priceListID, log)
		if err != nil {
			return e.failed(run, err)
		}
	}
	run.report.StockSynced = stock != nil

	// Match and merge.
	run.enter(StateMatching)
	items := make([]models.CatalogItem, len(snap.Items))
	for i := range snap.Items {
		items[i] = snap.Items[i].Clone()
	}
	items, err = e.merge(ctx, run, opts, items, entries, priceListID, stock)
	if err != nil {
		return e.failed(run, err)
	}
	run.report.CatalogSize = len(items)

	// Persist.
	run.enter(StatePersisting)
	switch {
	case opts.DryRun:
		log.Info("Dry run, catalog not written")
	case run.report.Created+run.report.Updated+run.report.PriceUnchanged == 0:
		log.Info("Nothing to write")
	default:
		revision, err := e.deps.Store.Save(ctx, items, snap.Revision)
		if err != nil {
			hint := "check that the catalog backend is writable"
			if errors.Is(err, store.ErrRevisionConflict) {
				hint = "the catalog changed while the run was in progress, run the sync again"
			}
			return e.abort(run, hint, fmt.Errorf("%w: %w", ErrPersistence, err))
		}
		log.Debug("Catalog written", zap.String("revision", revision), zap.Int("items", len(items)))
	}

	run.enter(StateReported)
	return run.finish(), nil
}

// failed turns a stage error into the fatal SyncError, with a hint by error kind.
func (e *Engine) failed(run *SyncRun, err error) (*Report, *SyncError) {
	hint := "see the error for details"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		hint = "the run timed out, raise sync.run_timeout_seconds or lower ers.max_page_size"
	case errors.Is(err, context.Canceled):
		hint = "the run was cancelled"
	case errors.Is(err, ers.ErrConfiguration):
		hint = "check ers.base_url, ers.token and the configured ids"
	case errors.Is(err, ers.ErrTransient):
		hint = "the ERS is unavailable, try again later"
	}
	return e.abort(run, hint, err)
}

// abort fails the run. The report is stamped after the failed transition.
func (e *Engine) abort(run *SyncRun, hint string, err error) (*Report, *SyncError) {
	serr := run.fail(hint, err)
	return run.finish(), serr
}

// priceList returns the explicit price list, or discovers one for the sales point.
// Discovery failures only degrade the run.
func (e *Engine) priceList(ctx context.Context, run *SyncRun, opts Options, log *zap.Logger) (string, error) {
	if id := strings.TrimSpace(opts.PriceListID); id != "" {
		return id, nil
	}
	if e.settings.SalesPointID == "" {
		return "", nil
	}

	lists, err := retry.DoValue(ctx, e.policy(), func(ctx context.Context) ([]ers.PriceList, error) {
		lists, err := e.deps.ERS.ListPriceLists(ctx, e.settings.SalesPointID, e.deps.Now())
		if err != nil && !ers.Retryable(err) {
			return nil, retry.Permanent(err)
		}
		return lists, err
	})
	switch {
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, ers.ErrConfiguration):
		return "", err
	case err != nil:
		run.warn("price list discovery failed: %v", err)
		return "", nil
	case len(lists) == 0:
		run.warn("no price list found for sales point %s", e.settings.SalesPointID)
		return "", nil
	}

	chosen := lists[0]
	if hint := strings.ToLower(strings.TrimSpace(e.settings.PriceListHint)); hint != "" {
		for _, pl := range lists {
			if strings.Contains(strings.ToLower(pl.Name), hint) {
				chosen = pl
				break
			}
		}
	}
	log.Info("Price list discovered", zap.String("price_list_id", chosen.ID), zap.String("name", chosen.Name))
	return chosen.ID, nil
}

// stock resolves warehouses and reads balances. Failures degrade to a run without stock.
func (e *Engine) stock(ctx context.Context, run *SyncRun, opts Options, priceListID string, log *zap.Logger) (*stockView, error) {
	res, err := e.deps.Warehouses.Resolve(ctx, warehouse.Hints{
		Company:       opts.CompanyHint,
		WarehouseName: opts.WarehouseName,
		WarehouseID:   opts.WarehouseID,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w := run.warn("warehouse resolution failed, stock not synced: %v", err)
		log.Warn("Stock sync skipped", zap.String("warning", w.String()))
		return nil, nil
	}
	for _, msg := range res.Warnings {
		run.warn("%s", msg)
	}

	run.report.CompanyID = strconv.FormatInt(res.CompanyID, 10)
	run.report.WarehouseID = strconv.FormatInt(res.Warehouse.ID, 10)
	run.report.WarehouseName = res.Warehouse.Name
	run.report.WarehouseIDs = res.WarehouseIDs

	query := ers.StockQuery{WarehouseIDs: res.WarehouseIDs, CompanyIDs: []int64{res.CompanyID}}
	if priceListID != "" {
		query.PriceListIDs = []string{priceListID}
	}
	balances, err := retry.DoValue(ctx, e.policy(), func(ctx context.Context) ([]ers.StockEntry, error) {
		b, err := e.deps.ERS.StockBalances(ctx, query)
		if err != nil && !ers.Retryable(err) {
			return nil, retry.Permanent(err)
		}
		return b, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w := run.warn("stock balances unavailable, stock not synced: %v", err)
		log.Warn("Stock sync skipped", zap.String("warning", w.String()))
		return nil, nil
	}

	return &stockView{
		levels:      Aggregate(balances, res.WarehouseIDs),
		warehouseID: run.report.WarehouseID,
	}, nil
}

// merge applies entries to items and returns the new catalog.
func (e *Engine) merge(ctx context.Context, run *SyncRun, opts Options, items []models.CatalogItem,
	entries []ers.PriceEntry, priceListID string, stock *stockView) ([]models.CatalogItem, error) {
	now := e.deps.Now().UTC()
	ids := newIDAllocator(items, e.deps.Now)

	// Only items present before the run are matched, each by at most one entry.
	known := len(items)
	claimed := make(map[int]bool)

	input := func(entry ers.PriceEntry) mergeInput {
		in := mergeInput{entry: entry, priceListID: priceListID, now: now}
		if qty, ok := stock.lookup(entry.ID); ok {
			in.stock, in.hasStock, in.warehouseID = qty, true, stock.warehouseID
		}
		return in
	}
	apply := func(i int, in mergeInput) {
		claimed[i] = true
		var changed bool
		if opts.Force {
			changed = rebuild(&items[i], in)
		} else {
			changed = mergePriceStock(&items[i], in)
		}
		if changed {
			run.report.Updated++
		} else {
			run.report.PriceUnchanged++
		}
	}

	priced := make([]ers.PriceEntry, 0, len(entries))
	for _, entry := range entries {
		if !positive(entry.Price) {
			run.report.SkippedNoPrice++
			continue
		}
		priced = append(priced, entry)
	}
	assigned := e.identity.Assign(priced, items[:known])

	for j, entry := range priced {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if a := assigned[j]; a.Item >= 0 {
			e.logger.Debug("Matched", zap.String("code", entry.Code), zap.String("item", items[a.Item].ID), zap.String("rule", a.Rule))
			apply(a.Item, input(entry))
			continue
		}

		if !opts.CreateMissing {
			run.report.NotFound++
			continue
		}
		items = append(items, newItem(ids.next(entry), input(entry)))
		run.report.Created++
	}

	if opts.LookupMissing {
		for i := 0; i < known; i++ {
			if claimed[i] || strings.TrimSpace(items[i].ExternalCode) == "" {
				continue
			}
			if err := e.lookup(ctx, run, &items[i], priceListID, stock, input, func(in mergeInput) { apply(i, in) }); err != nil {
				return nil, err
			}
		}
	}
	return items, nil
}

// lookup searches one unmatched catalog item by code and merges it when found.
func (e *Engine) lookup(ctx context.Context, run *SyncRun, item *models.CatalogItem, priceListID string,
	stock *stockView, input func(ers.PriceEntry) mergeInput, apply func(mergeInput)) error {
	found, err := retry.DoValue(ctx, e.policy(), func(ctx context.Context) (*ers.SearchResult, error) {
		r, err := e.deps.ERS.SearchByCode(ctx, item.ExternalCode, priceListID)
		if err != nil && !ers.Retryable(err) {
			return nil, retry.Permanent(err)
		}
		return r, err
	})
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ers.ErrNotFound):
		run.report.NotFound++
		return nil
	case err != nil:
		run.warn("lookup of %s failed: %v", item.ExternalCode, err)
		run.report.NotFound++
		return nil
	case !positive(found.Entry.Price):
		run.report.NotFound++
		return nil
	}

	in := input(found.Entry)
	if _, listed := stock.lookupListed(found.Entry.ID); stock != nil && found.HasStock && !listed {
		n := found.Stock.Floor().IntPart()
		if n < 0 {
			n = 0
		}
		in.stock, in.hasStock, in.warehouseID = int(n), true, stock.warehouseID
	}
	apply(in)
	return nil
}

func (e *Engine) policy() retry.Policy {
	if e.settings.Retry.BaseDelay == 0 && e.settings.Retry.MaxRetries == 0 && e.settings.Retry.Sleep == nil {
		return retry.Default()
	}
	return e.settings.Retry
}
