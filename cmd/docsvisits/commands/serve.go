package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve documentation pages with the visit tracker embedded",
	Long: `Serve documentation pages and inject the tracker bridge script into every
HTML page. The host exposes the tracker under /_tracker, Prometheus metrics
under /metrics and a health check under /health.`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// TrackerFlags binds the tracker settings shared by serve, submit and config.
type TrackerFlags struct {
	Repo           *string
	Label          *string
	APIURL         *string
	BatchSize      *int
	SubmitInterval *time.Duration
	Timeout        *time.Duration
	ForceTracking  *bool
}

// TrackerDefaults are the default values of the tracker flags.
type TrackerDefaults struct {
	Repo           string
	Label          string
	APIURL         string
	BatchSize      int
	SubmitInterval time.Duration
	Timeout        time.Duration
}

// SetupTrackerFlags adds the tracker flags to cmd.
func SetupTrackerFlags(cmd *cobra.Command, f TrackerFlags, d TrackerDefaults) {
	cmd.Flags().StringVar(f.Repo, "repo", d.Repo,
		"Repository (owner/name) receiving visit issues")
	cmd.Flags().StringVar(f.Label, "label", d.Label,
		"Issue label attached next to \"automated\"")
	cmd.Flags().StringVar(f.APIURL, "api-url", d.APIURL,
		"Issue API base URL (point at a docsvisits sink for local runs)")
	cmd.Flags().IntVar(f.BatchSize, "batch-size", d.BatchSize,
		"Buffered visits that trigger an immediate submission")
	cmd.Flags().DurationVar(f.SubmitInterval, "interval", d.SubmitInterval,
		"Longest a non-empty buffer waits for a submission")
	cmd.Flags().DurationVar(f.Timeout, "timeout", d.Timeout,
		"Issue request timeout")
	cmd.Flags().BoolVar(f.ForceTracking, "force-tracking", false,
		"Track loopback hosts and automated browsers (do-not-track is still honoured)")
}

// SetupServeFlags configures the serve-only flags
func SetupServeFlags(addrPtr, docsDirPtr *string, defaultAddr string) {
	serveCmd.Flags().StringVar(addrPtr, "addr", defaultAddr,
		"Address and port to serve on (e.g., 0.0.0.0:8000)")
	serveCmd.Flags().StringVar(docsDirPtr, "docs-dir", "",
		"Directory of built documentation (defaults to the bundled pages)")
}

// GetServeCommand returns the serve command for handler assignment
func GetServeCommand() *cobra.Command {
	return serveCmd
}
