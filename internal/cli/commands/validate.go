package commands

import "github.com/spf13/cobra"

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return newTaskCommand("validate", []string{"v"},
		"Run the full validation pipeline",
		`Run the full validation pipeline: check_format, build, test and lint,
in that order.

Execution stops at the first failing task; the remaining tasks are skipped
and the run fails.`)
}
