package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/conveyor/internal/cli/output"
	"github.com/spf13/cobra"
)

// taskInfoJSON is the JSON shape of a task listing entry.
type taskInfoJSON struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Summary string   `json:"summary"`
	Deps    []string `json:"deps,omitempty"`
}

// NewTasksCommand creates the tasks command.
func NewTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the available tasks",
		Long: `List every task with its aliases, dependencies and summary.

Tasks run their dependencies first, in declaration order, and a run stops at
the first failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContextWithoutStore(cmd)
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer

			tasks := cmdCtx.Registry.All()
			if r.EffectiveMode() == output.ModeJSON {
				infos := make([]taskInfoJSON, 0, len(tasks))
				for _, t := range tasks {
					infos = append(infos, taskInfoJSON{
						Name:    t.Name,
						Aliases: t.Aliases,
						Summary: t.Summary,
						Deps:    t.Deps,
					})
				}
				return r.JSON(infos)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(r.Writer())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Task", "Aliases", "Depends On", "Summary"})
			for _, t := range tasks {
				tw.AppendRow(table.Row{
					t.Name,
					strings.Join(t.Aliases, ", "),
					strings.Join(t.Deps, ", "),
					t.Summary,
				})
			}
			tw.Render()
			return nil
		},
	}
}
