// Package harness runner.
//
// The runner executes the test steps in order against one Browser and
// writes a transcript as it goes. Assertion failures are counted and the
// run continues; only errors talking to the browser or the host abort it.
package harness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/issuesink"
	"github.com/agntcy/docs-visits/internal/visit"
)

// SinkControl is the harness's handle on the issue endpoint the host
// submits to.
type SinkControl interface {
	FailWith(status int)
	Issues() []issuesink.Issue
	Reset()
}

// Options configures a run.
type Options struct {
	BaseURL string
	Paths   []string
	Settle  time.Duration // extra wait after network idle on each page
	Sink    SinkControl   // nil skips the submission check
	Out     io.Writer     // transcript destination, stdout when nil
	Now     func() time.Time
}

// Report counts the assertions of a run.
type Report struct {
	Passed   int
	Failed   int
	Failures []string
}

// OK reports whether every assertion passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Runner executes the end-to-end checks against one Browser.
type Runner struct {
	browser Browser
	opts    Options
	out     *transcript
	report  *Report
}

// NewRunner returns a Runner driving b.
func NewRunner(b Browser, opts Options) *Runner {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &Runner{
		browser: b,
		opts:    opts,
		out:     &transcript{w: opts.Out},
		report:  &Report{},
	}
}

// Console returns a sink for browser console lines that writes them into
// the transcript.
func (r *Runner) Console() func(string) {
	return r.out.console
}

// check records one assertion and prints its outcome.
func (r *Runner) check(ok bool, passMsg string, failFormat string, args ...any) bool {
	if ok {
		r.report.Passed++
		r.out.pass("%s", passMsg)
		return true
	}
	msg := fmt.Sprintf(failFormat, args...)
	r.report.Failed++
	r.report.Failures = append(r.report.Failures, msg)
	r.out.fail("%s", msg)
	return false
}

// Run executes every step. Assertion failures are recorded in the report
// and the run continues; the returned error is a fatal problem (browser or
// host unreachable) that stopped the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.out.printf("🧪 Starting visit tracking tests...\n\n")
	r.out.printf("🌐 Testing against: %s\n\n", r.opts.BaseURL)

	// Test 1
	r.out.heading("Test 1: Checking if tracker loads...")
	if err := r.browser.Open(ctx, r.opts.BaseURL+"/"); err != nil {
		return r.report, err
	}
	present, err := r.browser.TrackerPresent(ctx)
	if err != nil {
		return r.report, fmt.Errorf("tracker check: %w", err)
	}
	if !r.check(present, "Tracker loaded successfully", "Tracker not found") {
		r.out.summary(r.report)
		return r.report, nil
	}

	// Test 2
	r.out.heading("Test 2: Checking tracker configuration...")
	cfg, err := r.browser.TrackerConfig(ctx)
	if err != nil {
		return r.report, fmt.Errorf("read config: %w", err)
	}
	r.out.detail("📋", "Repo: %s", cfg.Repo)
	r.out.detail("📋", "Batch size: %d", cfg.BatchSize)
	r.out.detail("📋", "Submit interval: %g minutes", float64(cfg.SubmitInterval)/60000)
	r.check(cfg.Repo != "" && cfg.BatchSize > 0 && cfg.SubmitInterval > 0,
		"Config looks good", "Config incomplete: %+v", cfg)

	// Test 3
	r.out.heading("Test 3: Simulating page visits...")
	if err := r.browser.ClearVisits(ctx); err != nil {
		return r.report, fmt.Errorf("clear visits: %w", err)
	}
	for _, path := range r.opts.Paths {
		if err := r.visit(ctx, path); err != nil {
			return r.report, err
		}
	}
	visits, err := r.browser.Visits(ctx)
	if err != nil {
		return r.report, fmt.Errorf("read visits: %w", err)
	}
	r.check(len(visits) == len(r.opts.Paths),
		fmt.Sprintf("Tracked %d visits", len(visits)),
		"Tracked %d visits, expected %d", len(visits), len(r.opts.Paths))

	// Test 4
	r.out.heading("Test 4: Displaying tracked visit data...")
	for i, v := range visits {
		r.out.line("%d. %s [%s] at %s", i+1, v.Path, v.Device, v.TS)
		r.out.line("   Referrer: %s", v.Ref)
	}
	r.out.printf("\n")

	// Test 5
	r.out.heading("Test 5: Validating data format...")
	invalid := 0
	for _, v := range visits {
		if v.Path == "" || v.Device == "" || v.TS == "" || v.Date == "" {
			r.out.line("❌ Invalid visit data: %+v", v)
			invalid++
			continue
		}
		if err := v.Validate(); err != nil {
			r.out.line("❌ %v", err)
			invalid++
		}
	}
	r.check(invalid == 0, "All visit data is valid", "%d invalid visit records", invalid)

	// Test 6
	r.out.heading("Test 6: Testing storage persistence...")
	before := len(visits)
	if err := r.browser.Reload(ctx); err != nil {
		return r.report, err
	}
	afterReload, err := r.browser.Visits(ctx)
	if err != nil {
		return r.report, fmt.Errorf("read visits after reload: %w", err)
	}
	r.check(len(afterReload) == before,
		fmt.Sprintf("Data persisted across reload (%d visits)", len(afterReload)),
		"Data not persisted (had %d, now %d)", before, len(afterReload))

	// Test 7
	r.out.heading("Test 7: Testing submission format...")
	payload, err := issues.BuildPayload(afterReload, cfg.IssueLabel, r.opts.Now())
	if err != nil {
		return r.report, fmt.Errorf("build payload: %w", err)
	}
	jsonl, _ := issues.ExtractJSONL(payload.Body)
	lines := 0
	if jsonl != "" {
		lines = len(strings.Split(jsonl, "\n"))
	}
	r.out.detail("📋", "Issue title: %s", payload.Title)
	r.out.detail("📋", "JSONL lines: %d", lines)
	r.check(issues.ValidTitle(payload.Title) && lines == len(afterReload),
		"Submission format is correct",
		"Submission format wrong: title %q, %d JSONL lines for %d visits", payload.Title, lines, len(afterReload))

	// Test 8
	r.out.heading("Test 8: Testing clear function...")
	if err := r.browser.ClearVisits(ctx); err != nil {
		return r.report, fmt.Errorf("clear visits: %w", err)
	}
	afterClear, err := r.browser.Visits(ctx)
	if err != nil {
		return r.report, fmt.Errorf("read visits after clear: %w", err)
	}
	r.check(len(afterClear) == 0, "Clear function works",
		"Clear function failed (still has %d visits)", len(afterClear))

	// Test 9
	r.out.heading("Test 9: Testing submission against the issue sink...")
	if r.opts.Sink == nil {
		r.out.line("Skipped: no issue sink attached to this host")
		r.out.printf("\n")
	} else if err := r.submission(ctx, visits); err != nil {
		return r.report, err
	}

	r.out.summary(r.report)
	return r.report, nil
}

// visit opens path, lets the page settle and stores a record built from
// the page's own context. The record is written straight into storage: the
// live tracker refuses loopback hosts.
func (r *Runner) visit(ctx context.Context, path string) error {
	r.out.detail("🌐", "Visiting: %s", path)
	if err := r.browser.Open(ctx, r.opts.BaseURL+path); err != nil {
		return err
	}
	if r.opts.Settle > 0 {
		select {
		case <-time.After(r.opts.Settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	page, err := r.browser.PageContext(ctx)
	if err != nil {
		return fmt.Errorf("read page context: %w", err)
	}
	visits, err := r.browser.Visits(ctx)
	if err != nil {
		return fmt.Errorf("read visits: %w", err)
	}
	visits = append(visits, visit.Collect(page, r.opts.Now()))
	if err := r.browser.SetVisits(ctx, visits); err != nil {
		return fmt.Errorf("store visit: %w", err)
	}
	return nil
}

func (r *Runner) submission(ctx context.Context, injected []visit.Record) error {
	sink := r.opts.Sink
	sink.Reset()
	sink.FailWith(0)

	if err := r.browser.SetVisits(ctx, injected); err != nil {
		return fmt.Errorf("store visits: %w", err)
	}
	ok, err := r.browser.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	remaining, err := r.browser.Visits(ctx)
	if err != nil {
		return fmt.Errorf("read visits: %w", err)
	}
	r.check(ok && len(remaining) == 0,
		"Successful submission cleared the buffer",
		"Submission result %v left %d visits", ok, len(remaining))

	received := sink.Issues()
	roundTrip := false
	if len(received) == 1 {
		r.out.detail("📋", "Sink received: %s", received[0].Title)
		parsed, err := issues.ParseBody(received[0].Body)
		roundTrip = err == nil && sameRecords(parsed.Records, injected)
	}
	r.check(roundTrip, "Issue body parses back to the stored visits",
		"Sink received %d issues, body did not round-trip", len(received))

	sink.FailWith(http.StatusBadGateway)
	defer sink.FailWith(0)

	if err := r.browser.SetVisits(ctx, injected); err != nil {
		return fmt.Errorf("store visits: %w", err)
	}
	ok, err = r.browser.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	retained, err := r.browser.Visits(ctx)
	if err != nil {
		return fmt.Errorf("read visits: %w", err)
	}
	r.check(!ok && len(retained) == len(injected),
		fmt.Sprintf("Failed submission kept all %d visits", len(retained)),
		"Failed submission returned %v and left %d of %d visits", ok, len(retained), len(injected))

	return r.browser.ClearVisits(ctx)
}

func sameRecords(a, b []visit.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
