package syncrun

import (
	"errors"
	"fmt"
	"time"

	"inventory-sync/core/reconcile"
)

// Status is the state of a run, and of the coordinator.
type Status string

const (
	StatusIdle            Status = "Idle"
	StatusRunning         Status = "Running"
	StatusSucceeded       Status = "Succeeded"
	StatusPartiallyFailed Status = "PartiallyFailed"
	StatusAborted         Status = "Aborted"
)

// Terminal reports whether s ends a run.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusPartiallyFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// Run is a single sync execution.
type Run struct {
	ID         string            `json:"runId"`
	Status     Status            `json:"status"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt *time.Time        `json:"finishedAt,omitempty"`
	Report     *reconcile.Report `json:"report,omitempty"`
}

// State is the coordinator's current state and the run it refers to, if any.
type State struct {
	Status Status `json:"status"`
	RunID  string `json:"runId,omitempty"`
}

var (
	// ErrNotFound is returned for an unknown run id.
	ErrNotFound = errors.New("run not found")
	// ErrAlreadyRunning matches every *AlreadyRunningError.
	ErrAlreadyRunning = errors.New("sync already running")
	// ErrNotRunning is returned when cancelling a run that has already finished.
	ErrNotRunning = errors.New("run is not running")
	// ErrClosed is returned by Trigger after Close.
	ErrClosed = errors.New("coordinator closed")
)

// AlreadyRunningError rejects a trigger while another run is active.
type AlreadyRunningError struct {
	RunID string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("sync already running: %s", e.RunID)
}

// Is makes errors.Is(err, ErrAlreadyRunning) hold.
func (e *AlreadyRunningError) Is(target error) bool {
	return target == ErrAlreadyRunning
}

// statusFor maps a finished report to the terminal run status.
func statusFor(report *reconcile.Report) Status {
	switch report.Outcome {
	case reconcile.OutcomeAborted:
		return StatusAborted
	case reconcile.OutcomePartial:
		return StatusPartiallyFailed
	default:
		return StatusSucceeded
	}
}
