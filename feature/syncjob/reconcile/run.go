package reconcile

import (
	"fmt"
	"time"

	"catalog-sync/feature/syncjob/fetch"

	"github.com/google/uuid"
)

// State is a stage of a sync run.
type State string

// Run states in pipeline order. Failed is terminal and reachable from every other state.
const (
	StateInit          State = "init"
	StateFetching      State = "fetching"
	StateDeduplicating State = "deduplicating"
	StateResolving     State = "resolving"
	StateMatching      State = "matching"
	StatePersisting    State = "persisting"
	StateReported      State = "reported"
	StateFailed        State = "failed"
)

// Transition records when a run entered a state.
type Transition struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// Report is the outcome of a run.
type Report struct {
	RunID string `json:"runId"`
	State State  `json:"state"`

	TotalFetched      int `json:"totalFetched"`
	UniqueAfterDedup  int `json:"uniqueAfterDedup"`
	DuplicatesDropped int `json:"duplicatesDropped"`
	Created           int `json:"created"`
	Updated           int `json:"updated"`
	PriceUnchanged    int `json:"priceUnchanged"`
	NotFound          int `json:"notFound"`
	SkippedNoPrice    int `json:"skippedNoPrice"`

	PriceListID   string  `json:"priceListId"`
	WarehouseID   string  `json:"warehouseId"`
	WarehouseIDs  []int64 `json:"warehouseIds,omitempty"`
	WarehouseName string  `json:"warehouseName"`
	CompanyID     string  `json:"companyId"`
	StockSynced   bool    `json:"stockSynced"`

	Strategy      string                 `json:"strategy"`
	Degraded      bool                   `json:"degraded"`
	FetchAttempts []fetch.StrategyReport `json:"fetchAttempts,omitempty"`

	DryRun      bool         `json:"dryRun"`
	CatalogSize int          `json:"catalogSize"`
	Warnings    []Warning    `json:"warnings"`
	History     []Transition `json:"history"`

	StartedAt  time.Time `json:"startedAt"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"durationMs"`
}

// SyncRun is the state of one run. It is created per run, threaded through
// every stage and turned into the Report at the end.
type SyncRun struct {
	report Report
	now    func() time.Time
}

func newSyncRun(opts Options, now func() time.Time) *SyncRun {
	r := &SyncRun{now: now}
	r.report = Report{
		RunID:     uuid.NewString(),
		DryRun:    opts.DryRun,
		StartedAt: now().UTC(),
		Warnings:  []Warning{},
	}
	r.enter(StateInit)
	return r
}

// State returns the current state.
func (r *SyncRun) State() State {
	return r.report.State
}

func (r *SyncRun) enter(s State) {
	r.report.State = s
	r.report.History = append(r.report.History, Transition{State: s, At: r.now().UTC()})
}

func (r *SyncRun) warn(format string, args ...any) Warning {
	w := Warning{Stage: r.report.State, Message: fmt.Sprintf(format, args...)}
	r.report.Warnings = append(r.report.Warnings, w)
	return w
}

// fail moves the run to failed and builds the error returned to the caller.
func (r *SyncRun) fail(hint string, err error) *SyncError {
	stage := r.report.State
	r.enter(StateFailed)
	return &SyncError{Stage: stage, Hint: hint, Err: err}
}

// finish stamps the report.
func (r *SyncRun) finish() *Report {
	end := r.now().UTC()
	r.report.Timestamp = end
	r.report.DurationMs = end.Sub(r.report.StartedAt).Milliseconds()
	out := r.report
	return &out
}
