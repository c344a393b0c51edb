package commands

import (
	"github.com/spf13/cobra"
)

// Visits command group
var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Inspect and clear buffered visits",
	Long:  "Commands for inspecting and clearing the visit buffer kept in a store.",
}

// Visits list command
var visitsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List buffered visits",
	Long:  "Show the buffered visits of --store and when they were last submitted.",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Visits clear command
var visitsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all buffered visits",
	Long:  "Remove the visit buffer of --store. The last submission time is kept.",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetVisitsCommands returns the visits command structures for handler assignment
func GetVisitsCommands() (*cobra.Command, *cobra.Command) {
	return visitsLsCmd, visitsClearCmd
}
