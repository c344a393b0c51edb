package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agntcy/docs-visits/internal/buffer"
	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/metrics"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/visit"
)

// Events queued beyond this are refused with QueueFullError.
const eventQueueSize = 256

// ErrNotRunning is returned by Dispatch before Start or after Stop.
var ErrNotRunning = errors.New("tracker event loop not running")

// Options carries the tracker's collaborators. Only Store is required.
type Options struct {
	Store     storage.Store
	Submitter issues.Submitter // defaults to an issues.Client built from the config
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Tracker is one page-origin's visit tracker. All buffer mutation happens
// under mu, so lifecycle events, periodic checks and public-surface calls
// are serialized and a submission never interleaves with an append.
type Tracker struct {
	cfg       Config
	buf       *buffer.Buffer
	submitter issues.Submitter
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.Mutex
	lastPath string

	events  chan Event
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	runMu   sync.RWMutex
}

// New builds a tracker over opts.Store. cfg is validated and copied, so
// later changes to the caller's Config have no effect.
//
// Without an explicit Submitter the tracker posts to the GitHub issues API
// at cfg.APIBaseURL. Tests and the docsite inject their own submitter or
// point APIBaseURL at an issue sink. A nil Metrics disables instrumentation.
func New(cfg *Config, opts Options) (*Tracker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, errors.New("tracker requires a store")
	}

	submitter := opts.Submitter
	if submitter == nil {
		submitter = issues.NewClient(cfg.APIBaseURL, cfg.Repo, cfg.GetRequestTimeout())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		cfg:       *cfg,
		buf:       buffer.NewWithCapacity(opts.Store, cfg.BufferCapacity),
		submitter: submitter,
		metrics:   opts.Metrics,
		now:       now,
	}, nil
}

// Config returns a copy of the tracker's configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Size returns the number of buffered visits. Unlike Visits it reports
// storage errors to the caller; the CLI and metrics use it.
func (t *Tracker) Size() (int, error) {
	visits, err := t.buf.Load()
	if err != nil {
		return 0, err
	}
	return len(visits), nil
}

// ShouldTrack applies the eligibility rules with this tracker's bypass flag.
func (t *Tracker) ShouldTrack(p visit.Page) bool {
	return ShouldTrack(p, t.cfg.ForceTracking)
}

// Collect builds the record for a visit to p now.
func (t *Tracker) Collect(p visit.Page) visit.Record {
	return visit.Collect(p, t.now())
}

// StoreVisit appends r and returns the resulting buffer. On storage failure
// it logs at debug level and returns an empty slice.
func (t *Tracker) StoreVisit(r visit.Record) []visit.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.storeVisit(r)
}

func (t *Tracker) storeVisit(r visit.Record) []visit.Record {
	visits, err := t.buf.Append(r)
	if err != nil {
		logging.Debug("Storage error: %v", err)
		t.metrics.Visit(metrics.VisitFailed)
		return []visit.Record{}
	}
	t.metrics.Visit(metrics.VisitRecorded)
	return visits
}

// ShouldSubmit reports whether visits should be flushed: the batch size is
// reached, or the submit interval has passed since the last success and
// there is something to send. A stored time that cannot be read means no
// submission; one that is missing or unparseable counts as the epoch.
func (t *Tracker) ShouldSubmit(visits []visit.Record) bool {
	if len(visits) >= t.cfg.BatchSize {
		return true
	}
	if len(visits) == 0 {
		return false
	}

	last, err := t.buf.LastSubmit()
	if err != nil {
		logging.Debug("Storage error: %v", err)
		return false
	}
	return t.now().Sub(last) > t.cfg.GetSubmitInterval()
}

// Submit sends visits as one issue. On a 201 the buffer is cleared and the
// submission time recorded; any failure leaves the buffer untouched. An
// empty slice returns false without a request.
func (t *Tracker) Submit(ctx context.Context, visits []visit.Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submit(ctx, visits)
}

func (t *Tracker) submit(ctx context.Context, visits []visit.Record) bool {
	if len(visits) == 0 {
		t.metrics.Submission(metrics.SubmitEmpty)
		return false
	}

	now := t.now()
	payload, err := issues.BuildPayload(visits, t.cfg.IssueLabel, now)
	if err != nil {
		logging.Debug("Submit error: %v", err)
		t.metrics.Submission(metrics.SubmitFailure)
		return false
	}

	issue, err := t.submitter.Create(ctx, payload)
	if err != nil {
		logging.Debug("Submit failed: %v", err)
		t.metrics.Submission(metrics.SubmitFailure)
		return false
	}

	if err := t.buf.Clear(); err != nil {
		logging.Debug("Storage error: %v", err)
	}
	if err := t.buf.MarkSubmitted(now); err != nil {
		logging.Debug("Storage error: %v", err)
	}
	t.metrics.Submission(metrics.SubmitSuccess)
	if issue != nil {
		logging.Debug("Submitted %d visits as issue #%d", len(visits), issue.Number)
	}
	return true
}

// Visits returns the buffered visits, or an empty slice on storage failure.
func (t *Tracker) Visits() []visit.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visits()
}

func (t *Tracker) visits() []visit.Record {
	visits, err := t.buf.Load()
	if err != nil {
		logging.Debug("Storage error: %v", err)
		return []visit.Record{}
	}
	return visits
}

// Clear empties the buffer. Storage failures are logged and ignored.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.buf.Clear(); err != nil {
		logging.Debug("Storage error: %v", err)
	}
}

// ReplaceVisits overwrites the buffer with records, truncated to capacity.
// It is a raw storage write: records are not checked for eligibility.
func (t *Tracker) ReplaceVisits(records []visit.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Replace(records)
}

// ForceSubmit submits whatever is buffered, regardless of thresholds.
func (t *Tracker) ForceSubmit(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submit(ctx, t.visits())
}

// Track records a visit to p if it is eligible, then flushes the buffer if
// a threshold is crossed.
func (t *Tracker) Track(ctx context.Context, p visit.Page) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.track(ctx, p)
}

func (t *Tracker) track(ctx context.Context, p visit.Page) {
	if !t.ShouldTrack(p) {
		t.metrics.Visit(metrics.VisitSkipped)
		return
	}

	visits := t.storeVisit(t.Collect(p))
	if t.ShouldSubmit(visits) {
		t.submit(ctx, visits)
	}
}

// Handle processes one lifecycle event synchronously.
func (t *Tracker) Handle(ctx context.Context, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case EventLoad:
		t.lastPath = ev.Page.Path
		t.track(ctx, ev.Page)
	case EventNavigate:
		if ev.Page.Path == t.lastPath {
			return
		}
		t.lastPath = ev.Page.Path
		t.track(ctx, ev.Page)
	case EventHidden:
		visits := t.visits()
		if len(visits) >= t.cfg.HiddenMinimum {
			t.submit(ctx, visits)
		}
	default:
		logging.Debug("Ignoring unknown tracker event %q", ev.Kind)
	}
}

// Check runs the periodic threshold check.
func (t *Tracker) Check(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	visits := t.visits()
	if t.ShouldSubmit(visits) {
		t.submit(ctx, visits)
	}
}
