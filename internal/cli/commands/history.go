package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/conveyor/internal/cli/output"
	"github.com/leapstack-labs/conveyor/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	RunID string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `Show the most recent runs with their status and timing.

Use --run to show the per-task breakdown of a single run.`,
		Example: `  # Show the last 20 runs
  conveyor history

  # Show the last 5 runs
  conveyor history --limit 5

  # Show the task breakdown of one run
  conveyor history --run 4f6b9e0a-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "Show the task breakdown of this run")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.RunID != "" {
		return historyRun(cmdCtx, opts.RunID)
	}
	return historyList(cmdCtx, opts.Limit)
}

// historyJSON is the JSON shape of a run listing entry.
type historyJSON struct {
	ID          string  `json:"id"`
	Target      string  `json:"target"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	StartedAt   string  `json:"started_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

func historyList(cmdCtx *CommandContext, limit int) error {
	r := cmdCtx.Renderer
	runs, err := cmdCtx.Store.RecentRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]historyJSON, 0, len(runs))
		for _, run := range runs {
			info := historyJSON{
				ID:        run.ID,
				Target:    run.Target,
				Status:    string(run.Status),
				Error:     run.Error,
				StartedAt: run.StartedAt.Format(time.RFC3339),
			}
			if run.CompletedAt != nil {
				s := run.CompletedAt.Format(time.RFC3339)
				info.CompletedAt = &s
			}
			infos = append(infos, info)
		}
		return r.JSON(infos)
	}

	if len(runs) == 0 {
		r.Println("No runs recorded yet")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Run", "Target", "Status", "Started", "Duration"})
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		tw.AppendRow(table.Row{
			shortID(run.ID),
			run.Target,
			styledRunStatus(r, run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
		})
	}
	tw.Render()
	return nil
}

// taskRunJSON is the JSON shape of a task breakdown entry.
type taskRunJSON struct {
	Task       string `json:"task"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func historyRun(cmdCtx *CommandContext, runID string) error {
	r := cmdCtx.Renderer
	run, err := cmdCtx.Store.GetRun(runID)
	if err != nil {
		return err
	}
	taskRuns, err := cmdCtx.Store.TaskRuns(run.ID)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]taskRunJSON, 0, len(taskRuns))
		for _, tr := range taskRuns {
			infos = append(infos, taskRunJSON{
				Task:       tr.Task,
				Status:     string(tr.Status),
				Error:      tr.Error,
				DurationMS: tr.DurationMS,
			})
		}
		return r.JSON(infos)
	}

	styles := r.Styles()
	r.Println(styles.Header1.Render(fmt.Sprintf("Run %s: %s (%s)", shortID(run.ID), run.Target, run.Status)))
	if run.Error != "" {
		r.Println(styles.Error.Render(run.Error))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Task", "Status", "Duration", "Error"})
	for _, tr := range taskRuns {
		tw.AppendRow(table.Row{
			tr.Task,
			styledTaskStatus(r, tr.Status),
			(time.Duration(tr.DurationMS) * time.Millisecond).String(),
			tr.Error,
		})
	}
	tw.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func styledRunStatus(r *output.Renderer, status state.RunStatus) string {
	styles := r.Styles()
	switch status {
	case state.RunStatusCompleted:
		return styles.Success.Render(string(status))
	case state.RunStatusFailed:
		return styles.Error.Render(string(status))
	default:
		return styles.Warning.Render(string(status))
	}
}

func styledTaskStatus(r *output.Renderer, status state.TaskStatus) string {
	styles := r.Styles()
	switch status {
	case state.TaskStatusSuccess:
		return styles.Success.Render(string(status))
	case state.TaskStatusFailed:
		return styles.Error.Render(string(status))
	case state.TaskStatusSkipped:
		return styles.Muted.Render(string(status))
	default:
		return styles.Warning.Render(string(status))
	}
}
