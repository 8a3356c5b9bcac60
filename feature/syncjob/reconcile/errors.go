package reconcile

import (
	"errors"
	"fmt"

	"catalog-sync/feature/syncjob/fetch"
)

var (
	// ErrStrategyExhausted is returned for a fetch strategy whose retries ran out.
	ErrStrategyExhausted = fetch.ErrStrategyExhausted
	// ErrPersistence wraps failures writing the merged catalog.
	ErrPersistence = errors.New("failed to persist catalog")
	// ErrSyncInProgress is returned when another run holds the run lock.
	ErrSyncInProgress = errors.New("a sync run is already in progress")
)

// SyncError is a fatal run failure. The catalog is unchanged when it is returned.
type SyncError struct {
	Stage State
	// Hint tells an operator what to check.
	Hint string
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed while %s: %v", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Warning is a degraded sub-part of a run that did not stop it.
type Warning struct {
	Stage   State  `json:"stage"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return string(w.Stage) + ": " + w.Message
}
