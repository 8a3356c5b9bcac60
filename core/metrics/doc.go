// Package metrics exposes sync progress as Prometheus metrics.
//
// The fetcher reports pages, items, retries and strategy outcomes while it runs;
// the engine reports per-run outcomes. The start command mounts Handler at /metrics.
package metrics
