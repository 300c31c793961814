package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/conveyor/internal/cli/output"
	"github.com/leapstack-labs/conveyor/internal/state"
	"github.com/leapstack-labs/conveyor/internal/task"
	"github.com/leapstack-labs/conveyor/internal/toolchain"
	"github.com/spf13/cobra"
)

// progressObserver prints per-task progress through the renderer.
type progressObserver struct {
	r *output.Renderer
}

func (o *progressObserver) TaskStarted(name string) {
	if o.r.EffectiveMode() == output.ModeJSON {
		return
	}
	styles := o.r.Styles()
	o.r.Println(styles.Bold.Render(fmt.Sprintf("▶ %s", name)))
}

func (o *progressObserver) TaskFinished(res task.Result) {
	if o.r.EffectiveMode() == output.ModeJSON {
		return
	}
	styles := o.r.Styles()
	switch res.Status {
	case state.TaskStatusSuccess:
		o.r.Println(styles.Success.Render(fmt.Sprintf("✓ %s (%s)", res.Task, res.Duration.Round(time.Millisecond))))
	case state.TaskStatusFailed:
		o.r.Println(styles.Error.Render(fmt.Sprintf("✗ %s (%s)", res.Task, res.Duration.Round(time.Millisecond))))
	case state.TaskStatusSkipped:
		o.r.Println(styles.Muted.Render(fmt.Sprintf("- %s (skipped)", res.Task)))
	}
}

// taskResultJSON is the JSON shape of a single task result.
type taskResultJSON struct {
	Task       string `json:"task"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// runResultJSON is the JSON shape of a whole run.
type runResultJSON struct {
	Target  string           `json:"target"`
	Success bool             `json:"success"`
	Tasks   []taskResultJSON `json:"tasks"`
}

// runTask executes the named task with its dependencies and renders the
// outcome. The returned error carries the first task failure.
func runTask(cmd *cobra.Command, name string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	start := time.Now()
	results, runErr := cmdCtx.Runner.Run(cmd.Context(), name)

	if r.EffectiveMode() == output.ModeJSON {
		out := runResultJSON{Target: name, Success: runErr == nil}
		for _, res := range results {
			tr := taskResultJSON{
				Task:       res.Task,
				Status:     string(res.Status),
				DurationMS: res.Duration.Milliseconds(),
			}
			if res.Err != nil {
				tr.Error = res.Err.Error()
			}
			out.Tasks = append(out.Tasks, tr)
		}
		if err := r.JSON(out); err != nil {
			return err
		}
		return runErr
	}

	if runErr != nil {
		var exitErr *toolchain.ExitError
		if !errors.As(runErr, &exitErr) {
			// Tool output already explains exit failures; anything else
			// still needs printing.
			r.Errorln(r.Styles().Error.Render(runErr.Error()))
		}
		return runErr
	}

	styles := r.Styles()
	r.Println(styles.Success.Render(fmt.Sprintf("%s completed in %s", name, time.Since(start).Round(time.Millisecond))))
	return nil
}

// newTaskCommand creates a cobra command that runs a single workflow task.
func newTaskCommand(name string, aliases []string, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:     name,
		Aliases: aliases,
		Short:   short,
		Long:    long,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, name)
		},
	}
}
