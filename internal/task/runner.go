package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/conveyor/internal/state"
)

// Result is the outcome of one task within a run.
type Result struct {
	Task     string
	Status   state.TaskStatus
	Err      error
	Duration time.Duration
}

// Observer is notified as tasks start and finish.
type Observer interface {
	TaskStarted(name string)
	TaskFinished(res Result)
}

// Runner executes a task and its transitive dependencies sequentially.
type Runner struct {
	registry *Registry
	store    state.Store
	logger   *slog.Logger
	observer Observer
}

// NewRunner creates a Runner. The store and observer may be nil; a nil
// logger discards.
func NewRunner(registry *Registry, store state.Store, logger *slog.Logger, observer Observer) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{registry: registry, store: store, logger: logger, observer: observer}
}

// Plan returns the tasks that running name would execute, in order.
// Dependencies are visited depth first in declaration order, each task at
// most once, and the requested task comes last.
func (r *Runner) Plan(name string) ([]*Task, error) {
	target, ok := r.registry.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("unknown task: %s", name)
	}

	// Rejects unknown dependencies and cycles before planning.
	if _, err := r.registry.Graph(); err != nil {
		return nil, err
	}

	var plan []*Task
	seen := make(map[string]bool)
	var visit func(t *Task)
	visit = func(t *Task) {
		if seen[t.Name] {
			return
		}
		seen[t.Name] = true
		for _, dep := range t.Deps {
			d, _ := r.registry.Resolve(dep)
			visit(d)
		}
		plan = append(plan, t)
	}
	visit(target)
	return plan, nil
}

// Run executes name and its dependencies, stopping at the first failure and
// marking the remaining planned tasks skipped. The returned results cover
// every planned task. Run returns the error of the failed task, if any.
func (r *Runner) Run(ctx context.Context, name string) ([]Result, error) {
	plan, err := r.Plan(name)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting run", "target", name, "tasks", len(plan))

	var run *state.Run
	taskRunIDs := make(map[string]string, len(plan))
	if r.store != nil {
		run, err = r.store.CreateRun(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		for _, t := range plan {
			tr := &state.TaskRun{RunID: run.ID, Task: t.Name, Status: state.TaskStatusPending}
			if err := r.store.RecordTaskRun(tr); err != nil {
				return nil, fmt.Errorf("failed to record task run: %w", err)
			}
			taskRunIDs[t.Name] = tr.ID
		}
	}

	results := make([]Result, 0, len(plan))
	var failed *Result

	for _, t := range plan {
		if failed != nil {
			res := Result{Task: t.Name, Status: state.TaskStatusSkipped}
			results = append(results, res)
			r.record(taskRunIDs, t.Name, state.TaskStatusSkipped,
				fmt.Sprintf("skipped: task %s failed", failed.Task), 0)
			r.notifyFinished(res)
			continue
		}

		r.logger.Debug("running task", "task", t.Name)
		if r.observer != nil {
			r.observer.TaskStarted(t.Name)
		}
		r.record(taskRunIDs, t.Name, state.TaskStatusRunning, "", 0)

		start := time.Now()
		var runErr error
		if t.Run != nil {
			runErr = t.Run(ctx)
		}
		elapsed := time.Since(start)

		res := Result{Task: t.Name, Duration: elapsed}
		if runErr != nil {
			res.Status = state.TaskStatusFailed
			res.Err = runErr
			failed = &res
			r.logger.Debug("task failed", "task", t.Name, "error", runErr)
			r.record(taskRunIDs, t.Name, state.TaskStatusFailed, runErr.Error(), elapsed.Milliseconds())
		} else {
			res.Status = state.TaskStatusSuccess
			r.logger.Debug("task succeeded", "task", t.Name, "duration_ms", elapsed.Milliseconds())
			r.record(taskRunIDs, t.Name, state.TaskStatusSuccess, "", elapsed.Milliseconds())
		}
		results = append(results, res)
		r.notifyFinished(res)
	}

	if failed != nil {
		err := fmt.Errorf("task %s failed: %w", failed.Task, failed.Err)
		r.logger.Info("run failed", "target", name, "failed_task", failed.Task)
		if r.store != nil && run != nil {
			_ = r.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		}
		return results, err
	}

	r.logger.Info("run completed", "target", name)
	if r.store != nil && run != nil {
		_ = r.store.CompleteRun(run.ID, state.RunStatusCompleted, "")
	}
	return results, nil
}

func (r *Runner) record(ids map[string]string, task string, status state.TaskStatus, errMsg string, durationMS int64) {
	if r.store == nil {
		return
	}
	if id, ok := ids[task]; ok {
		_ = r.store.UpdateTaskRun(id, status, errMsg, durationMS)
	}
}

func (r *Runner) notifyFinished(res Result) {
	if r.observer != nil {
		r.observer.TaskFinished(res)
	}
}
