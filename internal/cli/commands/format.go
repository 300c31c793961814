package commands

import "github.com/spf13/cobra"

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	return newTaskCommand("format", nil,
		"Rewrite files into canonical format",
		`Run the formatter in write mode, rewriting files in place.`)
}

// NewCheckFormatCommand creates the check_format command.
func NewCheckFormatCommand() *cobra.Command {
	return newTaskCommand("check_format", nil,
		"Fail if any file is not formatted",
		`Run the formatter in list mode and fail if any file would change.

No file is modified.`)
}

// NewFixCommand creates the fix command.
func NewFixCommand() *cobra.Command {
	return newTaskCommand("fix", []string{"f"},
		"Apply automatic fixes",
		`Apply every automatic fix, starting with the formatter in write mode.`)
}
