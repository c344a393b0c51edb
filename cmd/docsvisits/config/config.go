// Package config holds the docsvisits CLI flag state.
//
// Flags bind into the package-level structs below; commands read them after
// cobra has parsed the command line and the validation hooks have run.
package config

import (
	"time"

	configDefaults "github.com/agntcy/docs-visits/internal/config"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/version"
)

const (
	DefaultServeAddr = configDefaults.DefaultServeAddr // documentation host
	DefaultSinkAddr  = "127.0.0.1:8081"                // standalone issue sink
	DefaultBaseURL   = configDefaults.DefaultBaseURL   // harness target
	DefaultStore     = configDefaults.DefaultStoreDSN  // in-memory store
	DefaultLogLevel  = configDefaults.DefaultLogLevel
	DefaultSettle    = 500 * time.Millisecond // wait after network idle on each harness page
)

// Version returns the current CLI version from the centralized version package
var Version = version.Version

// Global holds the persistent flags shared by every command
var Global struct {
	LogLevel string // Log level: DEBUG, INFO, WARN, ERROR
	Output   string // Output format: table, json
	Store    string // Store DSN: memory://, sqlite:///path, redis://host:port/db
}

// Tracker holds the tracker settings of serve, submit and config
var Tracker struct {
	Repo           string        // GitHub repository "owner/name"
	Label          string        // Issue label added before "automated"
	APIURL         string        // Issue API base URL
	BatchSize      int           // Size threshold
	SubmitInterval time.Duration // Time threshold
	Timeout        time.Duration // Per-request timeout
	ForceTracking  bool          // Record loopback hosts and automated browsers
}

// Serve holds the serve command configuration
var Serve struct {
	Addr    string // Listen address host:port
	DocsDir string // Built documentation directory, empty for bundled pages
}

// Harness holds the harness command configuration
var Harness struct {
	BaseURL string        // External host; empty hosts the docsite in-process
	Addr    string        // In-process host address
	Paths   []string      // Pages visited in the simulation step
	Settle  time.Duration // Extra wait after network idle
	Driver  string        // chrome or http
	Chrome  string        // Chrome binary path
	SinkURL string        // Issue sink of an external host
	Timeout time.Duration // Whole-run timeout
}

// Submit holds the submit command configuration
var Submit struct {
	DryRun bool // Print the payload instead of sending it
}

// Sink holds the sink command configuration
var Sink struct {
	Addr string // Listen address host:port
}

// TrackerConfig builds a tracker configuration from the defaults and the
// tracker flags. Settings without a flag (buffer capacity, hidden minimum,
// check period) keep their production defaults.
func TrackerConfig() *tracker.Config {
	cfg := tracker.DefaultConfig()
	cfg.Repo = Tracker.Repo
	cfg.IssueLabel = Tracker.Label
	cfg.APIBaseURL = Tracker.APIURL
	cfg.BatchSize = Tracker.BatchSize
	cfg.SubmitIntervalMs = int(Tracker.SubmitInterval / time.Millisecond)
	cfg.RequestTimeoutMs = int(Tracker.Timeout / time.Millisecond)
	cfg.ForceTracking = Tracker.ForceTracking
	return cfg
}
