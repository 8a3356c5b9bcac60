package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricPagesTotal        = "catalog_sync_fetch_pages_total"
	MetricItemsTotal        = "catalog_sync_fetch_items_total"
	MetricRetriesTotal      = "catalog_sync_fetch_retries_total"
	MetricStrategiesTotal   = "catalog_sync_fetch_strategies_total"
	MetricRunsTotal         = "catalog_sync_runs_total"
	MetricRunDuration       = "catalog_sync_run_duration_seconds"
	MetricItemChangesTotal  = "catalog_sync_item_changes_total"
	MetricCatalogItems      = "catalog_sync_catalog_items"
	MetricLastSuccessSecond = "catalog_sync_last_success_timestamp_seconds"
)

// Strategy outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeShort     = "short"
	OutcomeExhausted = "exhausted"
	OutcomeSkipped   = "skipped"
)

// Metrics holds the sync progress counters. A nil *Metrics records nothing,
// so components built without metrics need no special casing.
type Metrics struct {
	registry *prometheus.Registry

	pages       *prometheus.CounterVec
	items       *prometheus.CounterVec
	retries     *prometheus.CounterVec
	strategies  *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	changes     *prometheus.CounterVec
	catalogSize prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPagesTotal,
			Help: "ERS nomenclature pages fetched, by strategy.",
		}, []string{"strategy"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricItemsTotal,
			Help: "ERS nomenclature items received, by strategy.",
		}, []string{"strategy"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRetriesTotal,
			Help: "Page requests retried after a transient failure, by strategy.",
		}, []string{"strategy"}),
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStrategiesTotal,
			Help: "Fetch strategy attempts, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRunsTotal,
			Help: "Finished sync runs, by final state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRunDuration,
			Help:    "Wall time of sync runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricItemChangesTotal,
			Help: "Catalog item outcomes of sync runs, by kind.",
		}, []string{"kind"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricCatalogItems,
			Help: "Items in the catalog after the last successful run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastSuccessSecond,
			Help: "Unix time of the last successful run.",
		}),
	}

	registry.MustRegister(m.pages, m.items, m.retries, m.strategies, m.runs, m.runDuration,
		m.changes, m.catalogSize, m.lastSuccess)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// PageFetched records one page and the number of items it carried.
func (m *Metrics) PageFetched(strategy string, items int) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(strategy).Inc()
	m.items.WithLabelValues(strategy).Add(float64(items))
}

// PageRetried records one retry of a page request.
func (m *Metrics) PageRetried(strategy string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(strategy).Inc()
}

// StrategyFinished records how a strategy attempt ended.
func (m *Metrics) StrategyFinished(strategy, outcome string) {
	if m == nil {
		return
	}
	m.strategies.WithLabelValues(strategy, outcome).Inc()
}

// ItemChanges adds n to the counter for the given outcome kind.
func (m *Metrics) ItemChanges(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.changes.WithLabelValues(kind).Add(float64(n))
}

// RunFinished records the final state and duration of a run.
// Successful runs also update the catalog size and last-success gauges.
func (m *Metrics) RunFinished(state string, took time.Duration, catalogItems int, success bool) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(state).Inc()
	m.runDuration.Observe(took.Seconds())
	if success {
		m.catalogSize.Set(float64(catalogItems))
		m.lastSuccess.SetToCurrentTime()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
