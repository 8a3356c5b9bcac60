package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/metrics"
	"catalog-sync/core/retry"
	"catalog-sync/feature/ers"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrStrategyExhausted is returned for a strategy whose page retries ran out.
// The fetcher moves on to the next strategy.
var ErrStrategyExhausted = errors.New("fetch strategy exhausted")

// Options bound a fetch.
type Options struct {
	// MinItems is the item count a strategy must reach to be accepted.
	MinItems int
	// MaxPages bounds the pages of one strategy. Zero means unbounded.
	MaxPages int
	// MaxItems bounds the items of one strategy. Zero means unbounded.
	MaxItems int
	// PageDelay is the minimum spacing between page requests.
	PageDelay time.Duration
	// Retry applies to every page request.
	Retry retry.Policy
}

// StrategyReport describes how one strategy fared.
type StrategyReport struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Pages   int    `json:"pages"`
	Items   int    `json:"items"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of FetchAll.
type Result struct {
	Entries []ers.PriceEntry
	// Strategy produced Entries. Empty when no strategy returned anything.
	Strategy string
	Pages    int
	// Degraded is set when no strategy reached MinItems and Entries is the best partial result.
	Degraded bool
	Attempts []StrategyReport
}

// Fetcher runs strategies in order until one returns enough items.
type Fetcher struct {
	strategies []Strategy
	opts       Options
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// New creates a fetcher over the default strategies.
func New(api API, opts Options, m *metrics.Metrics, logger *zap.Logger) *Fetcher {
	return NewWithStrategies(DefaultStrategies(api), opts, m, logger)
}

// NewWithStrategies creates a fetcher over the given strategies.
func NewWithStrategies(strategies []Strategy, opts Options, m *metrics.Metrics, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PageDelay), 1)
	}
	return &Fetcher{strategies: strategies, opts: opts, limiter: limiter, metrics: m, logger: logger}
}

// FetchAll returns the output of the first strategy reaching MinItems. Results of
// different strategies are never merged. When every strategy falls short, the largest
// partial result is returned with Degraded set. Only context cancellation and
// configuration errors fail the call.
func (f *Fetcher) FetchAll(ctx context.Context, src Source) (Result, error) {
	var (
		best     Result
		attempts []StrategyReport
	)

	for _, s := range f.strategies {
		if !s.Applicable(src) {
			attempts = append(attempts, StrategyReport{Name: s.Name(), Outcome: metrics.OutcomeSkipped})
			f.metrics.StrategyFinished(s.Name(), metrics.OutcomeSkipped)
			continue
		}

		items, pages, err := f.run(ctx, s, src)
		report := StrategyReport{Name: s.Name(), Pages: pages, Items: len(items)}

		switch {
		case ctx.Err() != nil:
			return Result{}, ctx.Err()
		case errors.Is(err, ers.ErrConfiguration):
			return Result{}, err
		case err != nil:
			report.Outcome = metrics.OutcomeExhausted
			report.Error = err.Error()
			f.logger.Warn("Fetch strategy failed, trying next",
				zap.String("strategy", s.Name()),
				zap.Int("items", len(items)),
				zap.Error(err),
			)
		case len(items) >= f.opts.MinItems:
			report.Outcome = metrics.OutcomeAccepted
		default:
			report.Outcome = metrics.OutcomeShort
			f.logger.Info("Fetch strategy returned too few items, trying next",
				zap.String("strategy", s.Name()),
				zap.Int("items", len(items)),
				zap.Int("min_items", f.opts.MinItems),
			)
		}
		f.metrics.StrategyFinished(s.Name(), report.Outcome)
		attempts = append(attempts, report)

		if report.Outcome == metrics.OutcomeAccepted {
			return Result{Entries: items, Strategy: s.Name(), Pages: pages, Attempts: attempts}, nil
		}
		if len(items) > len(best.Entries) {
			best = Result{Entries: items, Strategy: s.Name(), Pages: pages}
		}
	}

	best.Degraded = true
	best.Attempts = attempts
	return best, nil
}

// run pages through one strategy. Items collected before a failure are returned with the error.
func (f *Fetcher) run(ctx context.Context, s Strategy, src Source) ([]ers.PriceEntry, int, error) {
	policy := f.opts.Retry
	onRetry := policy.OnRetry
	policy.OnRetry = func(n int, delay time.Duration, err error) {
		f.metrics.PageRetried(s.Name())
		f.logger.Debug("Retrying page",
			zap.String("strategy", s.Name()),
			zap.Int("retry", n),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if onRetry != nil {
			onRetry(n, delay, err)
		}
	}

	var (
		items []ers.PriceEntry
		pages int
		cur   = Cursor{Source: src}
	)
	for f.opts.MaxPages <= 0 || pages < f.opts.MaxPages {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return items, pages, err
			}
		}

		page, err := retry.DoValue(ctx, policy, func(ctx context.Context) (Page, error) {
			p, err := s.NextPage(ctx, cur)
			if err != nil && !ers.Retryable(err) {
				return p, retry.Permanent(err)
			}
			return p, err
		})
		if err != nil {
			if ctx.Err() != nil {
				return items, pages, ctx.Err()
			}
			if ers.Retryable(err) {
				return items, pages, fmt.Errorf("%w: %s: %w", ErrStrategyExhausted, s.Name(), err)
			}
			return items, pages, fmt.Errorf("%s: %w", s.Name(), err)
		}

		pages++
		products := withoutFolders(page.Items)
		f.metrics.PageFetched(s.Name(), len(products))
		items = append(items, products...)

		if f.opts.MaxItems > 0 && len(items) >= f.opts.MaxItems {
			f.logger.Warn("Fetch strategy reached the item limit",
				zap.String("strategy", s.Name()), zap.Int("max_items", f.opts.MaxItems))
			return items[:f.opts.MaxItems], pages, nil
		}
		if page.Done {
			return items, pages, nil
		}
		cur = page.Next
	}

	f.logger.Warn("Fetch strategy reached the page limit",
		zap.String("strategy", s.Name()), zap.Int("max_pages", f.opts.MaxPages))
	return items, pages, nil
}

// withoutFolders drops folder headers, which are not products.
func withoutFolders(entries []ers.PriceEntry) []ers.PriceEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if !e.IsFolder {
			out = append(out, e)
		}
	}
	return out
}
