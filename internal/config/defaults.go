// Package config provides the compile-time defaults shared by the tracker,
// the documentation host, the harness and the CLI. Values here are the
// published behavior of the tracker; runtime configuration starts from them.
package config

import "time"

const (
	// DefaultRepo is the repository whose issue tracker receives visit batches
	DefaultRepo = "agntcy/docs"

	// DefaultBatchSize triggers an immediate submission attempt
	DefaultBatchSize = 50

	// DefaultSubmitInterval is the longest a non-empty buffer waits for a submission
	// attempt when the batch size has not been reached
	DefaultSubmitInterval = 10 * time.Minute

	// DefaultIssueLabel marks issues for the downstream processor
	DefaultIssueLabel = "visit-data"

	// AutomatedLabel is always attached next to the issue label
	AutomatedLabel = "automated"

	// DefaultAPIBaseURL is the GitHub REST API root
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultRequestTimeout bounds a single issue-creation request
	DefaultRequestTimeout = 30 * time.Second
)

const (
	// VisitsKey is the storage key holding the JSON array of buffered visits
	VisitsKey = "docs_visits"

	// LastSubmitKey is the storage key holding the epoch-millisecond time of
	// the last successful submission
	LastSubmitKey = "docs_last_submit"

	// BufferCapacity is the maximum number of buffered visits; oldest go first
	BufferCapacity = 200

	// HiddenSubmitMinimum is the buffer length required before a submission
	// is attempted when the page is hidden
	HiddenSubmitMinimum = 10

	// CheckPeriod is the fixed period of the safety-net submit check
	CheckPeriod = 60 * time.Second
)

const (
	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultServeAddr is where the documentation host listens
	DefaultServeAddr = "127.0.0.1:8000"

	// DefaultBaseURL is the harness target
	DefaultBaseURL = "http://" + DefaultServeAddr

	// DefaultStoreDSN selects the in-memory store
	DefaultStoreDSN = "memory://"
)

// DefaultHarnessPaths are the documentation pages the harness visits.
var DefaultHarnessPaths = []string{
	"/",
	"/dir/overview/",
	"/slim/overview/",
	"/identity/overview/",
}
