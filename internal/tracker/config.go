// Package tracker records documentation page visits into a bounded buffer
// and flushes the buffer to the issue endpoint when a size or time threshold
// is crossed.
//
// SUBMISSION STRATEGY:
// Visits accumulate locally and leave the host in batches, one issue per
// batch. A batch is sent when either threshold is crossed:
//   - Size threshold: the buffer holds at least BatchSize records (default 50)
//   - Time threshold: more than SubmitInterval since the last success (default
//     10 minutes) and the buffer is not empty
//
// A page becoming hidden flushes early once HiddenMinimum records (default 10)
// are buffered, and a periodic check (default 60 seconds) re-evaluates the
// thresholds for readers who stay on one page.
//
// FAILURE MODEL:
// Every storage or network failure is swallowed and logged at DEBUG. A failed
// submission leaves the buffer untouched for the next attempt, so delivery is
// at-least-once with no deduplication and no retry schedule of its own.
//
// ELIGIBILITY:
// Loopback hosts, do-not-track readers and automated user agents are never
// tracked. ForceTracking lifts the host and automation checks for test
// environments; do-not-track always wins.
package tracker

import (
	"fmt"
	"time"

	"github.com/agntcy/docs-visits/internal/config"
	"github.com/agntcy/docs-visits/internal/validate"
)

// Config holds the tracker's tunables. The JSON names of the first four
// fields are the ones the page-side script exposes as its config object.
//
// Durations are carried in milliseconds to match that object; the Get*
// accessors convert them for Go callers. BatchSize may not exceed
// BufferCapacity, otherwise the size threshold could never be reached.
type Config struct {
	Repo             string `json:"repo" validate:"required,repo"`
	BatchSize        int    `json:"batchSize" validate:"min=1"`
	SubmitIntervalMs int    `json:"submitInterval" validate:"min=1"`
	IssueLabel       string `json:"issueLabel" validate:"required"`

	APIBaseURL       string `json:"apiBaseUrl" validate:"required,url"`
	RequestTimeoutMs int    `json:"requestTimeout" validate:"min=1"`
	BufferCapacity   int    `json:"bufferCapacity" validate:"min=1"`
	HiddenMinimum    int    `json:"hiddenSubmitMinimum" validate:"min=0"`
	CheckPeriodMs    int    `json:"checkPeriod" validate:"min=0"` // 0 disables the periodic check

	// ForceTracking skips the host and automation checks of ShouldTrack.
	// Do-not-track is always honoured.
	ForceTracking bool `json:"forceTracking"`
}

// DefaultConfig returns the production defaults from internal/config.
// Callers adjust individual fields (CLI flags, test fixtures) and then call
// Validate.
func DefaultConfig() *Config {
	return &Config{
		Repo:             config.DefaultRepo,
		BatchSize:        config.DefaultBatchSize,
		SubmitIntervalMs: int(config.DefaultSubmitInterval / time.Millisecond),
		IssueLabel:       config.DefaultIssueLabel,
		APIBaseURL:       config.DefaultAPIBaseURL,
		RequestTimeoutMs: int(config.DefaultRequestTimeout / time.Millisecond),
		BufferCapacity:   config.BufferCapacity,
		HiddenMinimum:    config.HiddenSubmitMinimum,
		CheckPeriodMs:    int(config.CheckPeriod / time.Millisecond),
	}
}

// Validate checks every field against its bounds.
//
// The repository is checked first so that a malformed "owner/name" gets a
// readable error instead of a validator tag failure. Called by New, so an
// invalid configuration never reaches a running tracker.
func (c *Config) Validate() error {
	if err := validate.ValidateRepo(c.Repo); err != nil {
		return err
	}
	if err := validate.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid tracker config: %w", err)
	}
	if c.BatchSize > c.BufferCapacity {
		return fmt.Errorf("batch size %d exceeds buffer capacity %d", c.BatchSize, c.BufferCapacity)
	}
	return nil
}

// GetSubmitInterval returns the submit interval as a time.Duration.
func (c *Config) GetSubmitInterval() time.Duration {
	return time.Duration(c.SubmitIntervalMs) * time.Millisecond
}

// GetRequestTimeout returns the per-request timeout as a time.Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// GetCheckPeriod returns the periodic check period as a time.Duration.
func (c *Config) GetCheckPeriod() time.Duration {
	return time.Duration(c.CheckPeriodMs) * time.Millisecond
}
