package commands

import "github.com/spf13/cobra"

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	return newTaskCommand("build", []string{"b"},
		"Compile every package",
		`Compile every package of the project without producing artifacts.

The build fails on the first compilation error.`)
}
