package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/visit"
)

// fakeSubmitter records payloads and fails when err is set.
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []issues.Payload
	err      error
}

func (f *fakeSubmitter) Create(ctx context.Context, p issues.Payload) (*issues.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return nil, f.err
	}
	return &issues.Issue{Number: len(f.payloads)}, nil
}

func (f *fakeSubmitter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	tracker   *Tracker
	store     *storage.MemoryStore
	submitter *fakeSubmitter
	clock     *fakeClock
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	f := &fixture{
		store:     storage.NewMemoryStore(),
		submitter: &fakeSubmitter{},
		clock:     &fakeClock{now: time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)},
	}

	tr, err := New(cfg, Options{Store: f.store, Submitter: f.submitter, Now: f.clock.Now})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.tracker = tr
	return f
}

// markRecentSubmit makes the interval trigger inactive.
func (f *fixture) markRecentSubmit(t *testing.T) {
	t.Helper()
	if err := f.tracker.buf.MarkSubmitted(f.clock.Now()); err != nil {
		t.Fatalf("MarkSubmitted() error = %v", err)
	}
}

var publicPage = visit.Page{
	Host:          "docs.agntcy.org",
	Path:          "/dir/overview/",
	Referrer:      "https://github.com/agntcy",
	UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) Chrome/130.0",
	ViewportWidth: 1280,
}

func records(n int) []visit.Record {
	out := make([]visit.Record, n)
	for i := range out {
		out[i] = visit.Record{
			Path:   fmt.Sprintf("/p%d/", i),
			Ref:    "direct",
			Device: visit.Desktop,
			TS:     "2025-10-16T12:00:00.000Z",
			Date:   "2025-10-16",
		}
	}
	return out
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 0
	if _, err := New(cfg, Options{Store: storage.NewMemoryStore()}); err == nil {
		t.Error("New() with zero batch size error = nil")
	}

	if _, err := New(DefaultConfig(), Options{}); err == nil {
		t.Error("New() without store error = nil")
	}
}

func TestBatchSizeBoundary(t *testing.T) {
	f := newFixture(t, nil)
	f.markRecentSubmit(t)
	ctx := context.Background()

	f.tracker.ReplaceVisits(records(48))
	f.tracker.Track(ctx, publicPage)
	if f.submitter.calls() != 0 {
		t.Fatalf("submitted at 49 visits")
	}
	if n, _ := f.tracker.Size(); n != 49 {
		t.Fatalf("Size() = %d, want 49", n)
	}

	f.tracker.Track(ctx, publicPage)
	if f.submitter.calls() != 1 {
		t.Fatalf("submissions = %d at 50 visits, want 1", f.submitter.calls())
	}
	if got := f.submitter.payloads[0].Title; got != "[Visit Data] 50 visits - 2025-10-16" {
		t.Errorf("Title = %q", got)
	}
	if n, _ := f.tracker.Size(); n != 0 {
		t.Errorf("Size() after successful submission = %d, want 0", n)
	}
	last, _ := f.tracker.buf.LastSubmit()
	if !last.Equal(f.clock.Now()) {
		t.Errorf("LastSubmit() = %v, want %v", last, f.clock.Now())
	}
}

func TestShouldSubmitInterval(t *testing.T) {
	f := newFixture(t, nil)
	f.markRecentSubmit(t)

	one := records(1)
	if f.tracker.ShouldSubmit(one) {
		t.Error("ShouldSubmit() right after a submission = true")
	}

	f.clock.Advance(10 * time.Minute)
	if f.tracker.ShouldSubmit(one) {
		t.Error("ShouldSubmit() at exactly the interval = true, want strictly greater")
	}

	f.clock.Advance(time.Millisecond)
	if !f.tracker.ShouldSubmit(one) {
		t.Error("ShouldSubmit() past the interval = false")
	}
	if f.tracker.ShouldSubmit(nil) {
		t.Error("ShouldSubmit() with no visits = true")
	}
}

func TestShouldSubmitWithoutLastSubmit(t *testing.T) {
	f := newFixture(t, nil)

	if !f.tracker.ShouldSubmit(records(1)) {
		t.Error("ShouldSubmit() with missing last submit = false, want true")
	}
	if f.tracker.ShouldSubmit([]visit.Record{}) {
		t.Error("ShouldSubmit() of empty buffer = true")
	}
}

func TestShouldSubmitLastSubmitReadFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailReads(true)
	defer f.store.FailReads(false)

	if f.tracker.ShouldSubmit(records(1)) {
		t.Error("ShouldSubmit() with unreadable last submit = true, want false")
	}
	if !f.tracker.ShouldSubmit(records(50)) {
		t.Error("ShouldSubmit() at batch size with unreadable last submit = false")
	}
}

func TestQueueFullErrorMessage(t *testing.T) {
	err := &QueueFullError{Current: 64, Capacity: 64}
	if got := err.Error(); got != "event queue full: 64/64" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSubmitEmptySendsNothing(t *testing.T) {
	f := newFixture(t, nil)

	if f.tracker.Submit(context.Background(), nil) {
		t.Error("Submit(nil) = true")
	}
	if f.submitter.calls() != 0 {
		t.Errorf("Submit(nil) made %d requests", f.submitter.calls())
	}
}

func TestSubmitFailureRetainsBuffer(t *testing.T) {
	f := newFixture(t, nil)
	f.submitter.err = &issues.StatusError{StatusCode: 401, Body: "Requires authentication"}
	f.markRecentSubmit(t)
	before, _ := f.tracker.buf.LastSubmit()

	f.tracker.ReplaceVisits(records(5))
	f.clock.Advance(time.Hour)

	if f.tracker.ForceSubmit(context.Background()) {
		t.Fatal("ForceSubmit() = true against failing endpoint")
	}
	if n, _ := f.tracker.Size(); n != 5 {
		t.Errorf("Size() after failure = %d, want 5", n)
	}
	after, _ := f.tracker.buf.LastSubmit()
	if !after.Equal(before) {
		t.Errorf("LastSubmit changed on failure: %v -> %v", before, after)
	}
}

func TestSubmitStorageFailureAfterSuccess(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.ReplaceVisits(records(3))
	f.store.FailWrites(true)

	// The request went out, so the result is success even though the
	// buffer could not be cleared.
	if !f.tracker.ForceSubmit(context.Background()) {
		t.Error("ForceSubmit() = false")
	}
	f.store.FailWrites(false)
	if n, _ := f.tracker.Size(); n != 3 {
		t.Errorf("Size() = %d, want 3 (clear failed)", n)
	}
}

func TestStoreVisitStorageFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.store.FailWrites(true)

	got := f.tracker.StoreVisit(records(1)[0])
	if got == nil || len(got) != 0 {
		t.Errorf("StoreVisit() under failing storage = %v, want empty slice", got)
	}
}

func TestVisitsStorageFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.ReplaceVisits(records(2))
	f.store.FailReads(true)

	if got := f.tracker.Visits(); len(got) != 0 {
		t.Errorf("Visits() under failing storage = %d records", len(got))
	}
	f.tracker.Clear()
}

func TestTrackSkipsIneligiblePages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	local := publicPage
	local.Host = "localhost"
	f.tracker.Track(ctx, local)

	dnt := publicPage
	dnt.DoNotTrack = true
	f.tracker.Track(ctx, dnt)

	if n, _ := f.tracker.Size(); n != 0 {
		t.Errorf("Size() = %d, want 0", n)
	}
}

func TestForceTrackingBypassesHostButNotDNT(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.ForceTracking = true })
	f.markRecentSubmit(t)
	ctx := context.Background()

	local := publicPage
	local.Host = "127.0.0.1"
	local.UserAgent = "HeadlessChrome/130.0"
	f.tracker.Track(ctx, local)

	dnt := local
	dnt.DoNotTrack = true
	f.tracker.Track(ctx, dnt)

	visits := f.tracker.Visits()
	if len(visits) != 1 {
		t.Fatalf("Visits() = %d, want 1", len(visits))
	}
	if visits[0].Ref != "github.com" || visits[0].Device != visit.Desktop {
		t.Errorf("record = %+v", visits[0])
	}
}

func TestNavigateDedupesSamePath(t *testing.T) {
	f := newFixture(t, nil)
	f.markRecentSubmit(t)
	ctx := context.Background()

	f.tracker.Handle(ctx, Event{Kind: EventLoad, Page: publicPage})
	f.tracker.Handle(ctx, Event{Kind: EventNavigate, Page: publicPage})

	next := publicPage
	next.Path = "/slim/overview/"
	f.tracker.Handle(ctx, Event{Kind: EventNavigate, Page: next})
	f.tracker.Handle(ctx, Event{Kind: EventNavigate, Page: next})

	visits := f.tracker.Visits()
	if len(visits) != 2 {
		t.Fatalf("Visits() = %d, want 2", len(visits))
	}
	if visits[1].Path != "/slim/overview/" {
		t.Errorf("second visit path = %s", visits[1].Path)
	}
}

func TestHiddenSubmitMinimum(t *testing.T) {
	tests := []struct {
		buffered   int
		wantSubmit bool
	}{
		{0, false},
		{9, false},
		{10, true},
		{30, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d buffered", tt.buffered), func(t *testing.T) {
			f := newFixture(t, nil)
			f.markRecentSubmit(t)
			f.tracker.ReplaceVisits(records(tt.buffered))

			f.tracker.Handle(context.Background(), Event{Kind: EventHidden})

			if got := f.submitter.calls() == 1; got != tt.wantSubmit {
				t.Errorf("submitted = %v, want %v", got, tt.wantSubmit)
			}
		})
	}
}

func TestCheckUsesInterval(t *testing.T) {
	f := newFixture(t, nil)
	f.markRecentSubmit(t)
	f.tracker.ReplaceVisits(records(3))
	ctx := context.Background()

	f.tracker.Check(ctx)
	if f.submitter.calls() != 0 {
		t.Fatal("Check() submitted before the interval")
	}

	f.clock.Advance(11 * time.Minute)
	f.tracker.Check(ctx)
	if f.submitter.calls() != 1 {
		t.Fatalf("Check() submissions = %d, want 1", f.submitter.calls())
	}
	if n, _ := f.tracker.Size(); n != 0 {
		t.Errorf("Size() = %d after submission", n)
	}
}

func TestEventLoopProcessesInOrder(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.CheckPeriodMs = 0 })
	f.markRecentSubmit(t)

	if _, err := f.tracker.Dispatch(Event{Kind: EventLoad, Page: publicPage}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Dispatch() before Start error = %v", err)
	}

	f.tracker.Start()
	paths := []string{"/a/", "/b/", "/c/"}
	var last <-chan struct{}
	for i, p := range paths {
		page := publicPage
		page.Path = p
		kind := EventNavigate
		if i == 0 {
			kind = EventLoad
		}
		done, err := f.tracker.Dispatch(Event{Kind: kind, Page: page})
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		last = done
	}

	select {
	case <-last:
	case <-time.After(5 * time.Second):
		t.Fatal("event not processed")
	}
	f.tracker.Stop()

	visits := f.tracker.Visits()
	if len(visits) != len(paths) {
		t.Fatalf("Visits() = %d, want %d", len(visits), len(paths))
	}
	for i, p := range paths {
		if visits[i].Path != p {
			t.Errorf("visit %d path = %s, want %s", i, visits[i].Path, p)
		}
	}

	if _, err := f.tracker.Dispatch(Event{Kind: EventHidden}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Dispatch() after Stop error = %v", err)
	}
}

func TestStopDrainsQueuedEvents(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.CheckPeriodMs = 0 })
	f.markRecentSubmit(t)
	f.tracker.Start()

	var done []<-chan struct{}
	for i := 0; i < 20; i++ {
		page := publicPage
		page.Path = fmt.Sprintf("/p%d/", i)
		ch, err := f.tracker.Dispatch(Event{Kind: EventNavigate, Page: page})
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		done = append(done, ch)
	}
	f.tracker.Stop()

	for i, ch := range done {
		select {
		case <-ch:
		default:
			t.Errorf("event %d not processed before Stop returned", i)
		}
	}
	if n, _ := f.tracker.Size(); n != 20 {
		t.Errorf("Size() = %d, want 20", n)
	}
}

func TestConfigCopy(t *testing.T) {
	f := newFixture(t, nil)
	cfg := f.tracker.Config()
	cfg.BatchSize = 1

	if f.tracker.Config().BatchSize != 50 {
		t.Error("Config() exposed internal state")
	}
	current := f.tracker.Config()
	if got := current.GetSubmitInterval(); got != 10*time.Minute {
		t.Errorf("GetSubmitInterval() = %v", got)
	}
}
