// Package handlers provides command handler functions for one-shot
// submission and configuration display.
//
// HandleSubmit builds a tracker over the --store backend and runs exactly one
// submission, which makes it possible to flush a shared buffer from cron or
// by hand. The tracker's own semantics apply: success clears the buffer and
// records the submission time, failure keeps both untouched.
package handlers

import (
	"fmt"
	"time"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/display"
	"github.com/agntcy/docs-visits/cmd/docsvisits/utils"
	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/spf13/cobra"
)

// HandleSubmit submits the buffered visits of --store once. On failure the
// visits stay buffered and the command exits non-zero.
//
// With --dry-run the payload is rendered and printed without a request. An
// empty buffer is reported and exits zero; there is nothing to submit.
func HandleSubmit(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	cfg := config.TrackerConfig()
	tr, err := tracker.New(cfg, tracker.Options{Store: store})
	if err != nil {
		return err
	}

	visits := tr.Visits()
	if config.Submit.DryRun {
		payload, err := issues.BuildPayload(visits, cfg.IssueLabel, time.Now())
		if err != nil {
			return err
		}
		display.DisplayPayload(payload)
		return nil
	}

	result := display.SubmitResult{Count: len(visits)}
	if len(visits) > 0 {
		result.Submitted = tr.Submit(cmd.Context(), visits)
		result.Remaining = len(tr.Visits())
	}
	display.DisplaySubmit(result)
	if result.Count > 0 && !result.Submitted {
		return fmt.Errorf("submission to %s failed (run with DEBUG=true for details)", cfg.Repo)
	}
	return nil
}

// HandleConfig prints the tracker configuration the tracker flags produce,
// the same values `serve` would pass to its tracker.
func HandleConfig(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()
	display.DisplayConfig(*config.TrackerConfig())
	return nil
}
