package syncjob

import (
	"strings"
	"time"

	"catalog-sync/core/retry"
	"catalog-sync/feature/syncjob/fetch"
)

// Config tunes sync runs.
type Config struct {
	// MinItems is the item count a fetch strategy must reach to be accepted.
	MinItems int `mapstructure:"min_items" default:"100"`
	// MaxPages bounds the pages of one fetch strategy.
	MaxPages int `mapstructure:"max_pages" default:"1000"`
	// MaxItems bounds the items of one fetch strategy.
	MaxItems int `mapstructure:"max_items" default:"100000"`
	// RetryAttempts is the number of retries of a failed ERS request.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// RetryBaseMillis is the wait before the first retry. It doubles per retry.
	RetryBaseMillis int `mapstructure:"retry_base_ms" default:"1000"`
	// PageDelayMillis is the minimum spacing between page requests.
	PageDelayMillis int `mapstructure:"page_delay_ms" default:"100"`
	// RunTimeoutSeconds bounds a whole run. Zero disables the timeout.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" default:"1800"`
	// ScheduleMinutes is the interval of scheduled runs. Zero disables the scheduler.
	ScheduleMinutes int `mapstructure:"schedule_minutes" default:"0"`
	// ScheduleSyncStock makes scheduled runs sync stock too.
	ScheduleSyncStock bool `mapstructure:"schedule_sync_stock" default:"true"`
	// DefaultWarehouseAliases is a comma separated list of tokens naming the default warehouse.
	DefaultWarehouseAliases string `mapstructure:"default_warehouse_aliases" default:""`
	// CacheTTLSeconds is how long company and warehouse listings are reused.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
}

// Aliases splits DefaultWarehouseAliases.
func (c Config) Aliases() []string {
	var out []string
	for _, a := range strings.Split(c.DefaultWarehouseAliases, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// RetryPolicy builds the retry policy for ERS requests.
func (c Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	if c.RetryAttempts >= 0 {
		p.MaxRetries = c.RetryAttempts
	}
	if c.RetryBaseMillis > 0 {
		p.BaseDelay = time.Duration(c.RetryBaseMillis) * time.Millisecond
	}
	return p
}

// FetchOptions builds the fetcher options.
func (c Config) FetchOptions() fetch.Options {
	return fetch.Options{
		MinItems:  c.MinItems,
		MaxPages:  c.MaxPages,
		MaxItems:  c.MaxItems,
		PageDelay: time.Duration(c.PageDelayMillis) * time.Millisecond,
		Retry:     c.RetryPolicy(),
	}
}

// RunTimeout returns the run timeout, zero when disabled.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// ScheduleInterval returns the scheduler interval, zero when disabled.
func (c Config) ScheduleInterval() time.Duration {
	return time.Duration(c.ScheduleMinutes) * time.Minute
}

// CacheTTL returns the listing cache TTL.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
