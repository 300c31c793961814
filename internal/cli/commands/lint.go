package commands

import "github.com/spf13/cobra"

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	return newTaskCommand("lint", nil,
		"Run the configured analyzers; any finding fails",
		`Run the static analyzers with exactly the configured rule set enabled.

Every rule runs at deny severity: a single finding fails the task.`)
}
