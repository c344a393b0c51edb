// Package harness drives a browser through the documentation host and checks
// the tracker end to end.
//
// TEST STEPS:
//  1. Tracker surface present on the landing page
//  2. Configuration readable (repo, batch size, interval)
//  3. Page visits simulated, one synthetic record injected per page
//  4. Tracked records listed
//  5. Record fields validated
//  6. Records persist across a full reload
//  7. Issue payload built from the records is well formed
//  8. Clearing empties the buffer
//  9. Submission against the issue sink clears or retains the buffer
//
// DRIVERS:
// A Browser is either headless Chrome (ChromeBrowser, chromedp) evaluating
// window.docsVisitTracker in the page, or HTTPBrowser calling the /_tracker
// endpoints the bridge script would call. Both produce the same transcript
// for the same host.
//
// Step 3 injects records instead of relying on live tracking: the harness
// runs on loopback with an automated agent, which the eligibility rules
// refuse.
package harness

import (
	"context"

	"github.com/agntcy/docs-visits/internal/docsite/handlers"
	"github.com/agntcy/docs-visits/internal/visit"
)

// Browser is one page session the harness drives. Every method acts on the
// currently open page through window.docsVisitTracker.
type Browser interface {
	// Open navigates to url and waits until the network is idle.
	Open(ctx context.Context, url string) error
	// Reload reloads the current page and waits until the network is idle.
	Reload(ctx context.Context) error

	TrackerPresent(ctx context.Context) (bool, error)
	TrackerConfig(ctx context.Context) (handlers.PublicConfig, error)
	PageContext(ctx context.Context) (visit.Page, error)

	Visits(ctx context.Context) ([]visit.Record, error)
	SetVisits(ctx context.Context, records []visit.Record) error
	ClearVisits(ctx context.Context) error
	Submit(ctx context.Context) (bool, error)

	Close() error
}
