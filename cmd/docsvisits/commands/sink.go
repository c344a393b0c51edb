package commands

import (
	"github.com/spf13/cobra"
)

// Sink command
var sinkCmd = &cobra.Command{
	Use:   "sink",
	Short: "Run a local stand-in for the issue-creation endpoint",
	Long: `Accept issues on POST /repos/{owner}/{repo}/issues and keep them in memory.
GET /issues lists them, DELETE /issues forgets them and PUT /fail makes the
sink answer with an error status. Point --api-url of serve or submit here.`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// SetupSinkFlags configures the sink flags
func SetupSinkFlags(addrPtr *string, defaultAddr string) {
	sinkCmd.Flags().StringVar(addrPtr, "addr", defaultAddr,
		"Address and port to listen on")
}

// GetSinkCommand returns the sink command for handler assignment
func GetSinkCommand() *cobra.Command {
	return sinkCmd
}
