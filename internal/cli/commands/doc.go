package commands

import "github.com/spf13/cobra"

// NewDocCommand creates the doc command.
func NewDocCommand() *cobra.Command {
	return newTaskCommand("doc", nil,
		"Render documentation of exported items",
		`Render the documentation of every package, exported items only.

The packages come from the docs.packages configuration, defaulting to every
package of the project.`)
}

// NewDocAllCommand creates the doc_all command.
func NewDocAllCommand() *cobra.Command {
	return newTaskCommand("doc_all", nil,
		"Render documentation including private items",
		`Render the documentation of every package, including unexported and
undocumented items.`)
}
