package commands

import (
	"github.com/spf13/cobra"
)

// Submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit buffered visits as an issue now",
	Long: `Submit the buffered visits of --store as one issue, regardless of the batch
size and interval. A successful submission clears the buffer; a failed one
keeps it for the next attempt.`,
	Args: cobra.NoArgs,
	Example: `  # Flush a SQLite buffer to a local sink
  docsvisits submit --store=sqlite://visits.db --api-url=http://127.0.0.1:8081

  # Print the issue that would be created
  docsvisits submit --store=sqlite://visits.db --dry-run`,
	// RunE will be set by the main package that imports this
}

// Config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective tracker configuration",
	Args:  cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// SetupSubmitFlags configures the submit-only flags
func SetupSubmitFlags(dryRunPtr *bool) {
	submitCmd.Flags().BoolVar(dryRunPtr, "dry-run", false,
		"Print the issue payload instead of sending it")
}

// GetSubmitCommands returns the submit and config commands for handler assignment
func GetSubmitCommands() (*cobra.Command, *cobra.Command) {
	return submitCmd, configCmd
}
