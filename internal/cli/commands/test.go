package commands

import "github.com/spf13/cobra"

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	return newTaskCommand("test", []string{"t"},
		"Run tests verbosely with every feature set",
		`Run the test suite with verbose output and every configured feature set
(build tag) enabled.`)
}
