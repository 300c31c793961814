// Package state provides run-history tracking for Conveyor using SQLite.
// It records each workflow run and the per-task results within it.
package state

import "time"

// RunStatus is the status of a workflow run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a single invocation of a task and its dependencies.
type Run struct {
	ID          string
	Target      string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// TaskStatus is the status of a single task within a run.
type TaskStatus string

// Task statuses.
const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
	TaskStatusSkipped TaskStatus = "skipped"
)

// TaskRun is the execution record of one task within a run.
type TaskRun struct {
	ID         string
	RunID      string
	Task       string
	Status     TaskStatus
	Error      string
	DurationMS int64
}

// Store persists runs and task runs.
type Store interface {
	// CreateRun records the start of a run targeting the named task.
	CreateRun(target string) (*Run, error)
	// CompleteRun marks a run as finished with the given status.
	CompleteRun(id string, status RunStatus, errMsg string) error
	// GetRun retrieves a run by ID.
	GetRun(id string) (*Run, error)
	// RecentRuns retrieves the most recent runs, newest first.
	RecentRuns(limit int) ([]*Run, error)

	// RecordTaskRun inserts a task run, assigning its ID.
	RecordTaskRun(tr *TaskRun) error
	// UpdateTaskRun updates the status, error and duration of a task run.
	UpdateTaskRun(id string, status TaskStatus, errMsg string, durationMS int64) error
	// TaskRuns retrieves the task runs of a run in insertion order.
	TaskRuns(runID string) ([]*TaskRun, error)

	// Close releases the store.
	Close() error
}
