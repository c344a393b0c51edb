package docsite

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agntcy/docs-visits/internal/buffer"
	"github.com/agntcy/docs-visits/internal/docsite/handlers"
	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/visit"
	"github.com/gin-gonic/gin"
)

type recordingSubmitter struct {
	mu       sync.Mutex
	payloads []issues.Payload
}

func (r *recordingSubmitter) Create(ctx context.Context, p issues.Payload) (*issues.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	return &issues.Issue{Number: len(r.payloads)}, nil
}

func newTestServer(t *testing.T) (*Server, *recordingSubmitter) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BindPort = 0
	cfg.Store = seededStore(t)
	cfg.Tracker.ForceTracking = true
	cfg.Tracker.CheckPeriodMs = 0
	sub := &recordingSubmitter{}
	cfg.Submitter = sub

	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	gin.SetMode(gin.TestMode)
	return s, sub
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewServerValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad bind address", mutate: func(c *Config) { c.BindAddr = "localhost" }},
		{name: "port too high", mutate: func(c *Config) { c.BindPort = 70000 }},
		{name: "missing store", mutate: func(c *Config) { c.Store = nil }},
		{name: "missing docs dir", mutate: func(c *Config) { c.DocsDir = "/nonexistent/docs" }},
		{name: "bad tracker config", mutate: func(c *Config) { c.Tracker.Repo = "nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if _, err := NewServer(cfg); err == nil {
				t.Error("NewServer() error = nil")
			}
		})
	}
}

func TestPagesInjectBridgeScript(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for _, p := range []string{"/", "/dir/overview/", "/slim/overview/", "/identity/overview/"} {
		w := do(t, h, http.MethodGet, p, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", p, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), handlers.ScriptTag) {
			t.Errorf("GET %s did not inject the bridge script", p)
		}
	}

	if w := do(t, h, http.MethodGet, "/dir/overview", nil); w.Code != http.StatusMovedPermanently {
		t.Errorf("GET /dir/overview status = %d, want 301", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/nope/", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET /nope/ status = %d, want 404", w.Code)
	}
}

func TestBridgeScriptCarriesConfig(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/_tracker/tracker.js", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"window.docsVisitTracker",
		`"repo":"agntcy/docs"`,
		`"batchSize":50`,
		`"submitInterval":600000`,
		`"issueLabel":"visit-data"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("script missing %s", want)
		}
	}
	if strings.Contains(body, "__CONFIG__") {
		t.Error("config placeholder not replaced")
	}
}

func TestEventsRecordVisits(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	page := visit.Page{Host: "127.0.0.1", Path: "/dir/overview/", ViewportWidth: 600, UserAgent: "HeadlessChrome"}
	w := do(t, h, http.MethodPost, "/_tracker/events", tracker.Event{Kind: tracker.EventLoad, Page: page})
	if w.Code != http.StatusAccepted {
		t.Fatalf("POST events status = %d: %s", w.Code, w.Body.String())
	}

	// Same path again is not a navigation.
	do(t, h, http.MethodPost, "/_tracker/events", tracker.Event{Kind: tracker.EventNavigate, Page: page})

	w = do(t, h, http.MethodGet, "/_tracker/visits", nil)
	var resp handlers.VisitsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Visits[0].Device != visit.Mobile {
		t.Errorf("visits = %+v", resp)
	}

	if w := do(t, h, http.MethodPost, "/_tracker/events", map[string]any{"kind": "scroll"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown event kind status = %d, want 400", w.Code)
	}
}

func TestEventsThroughRunningLoop(t *testing.T) {
	s, _ := newTestServer(t)
	s.Tracker().Start()
	defer s.Tracker().Stop()

	page := visit.Page{Host: "docs.agntcy.org", Path: "/", ViewportWidth: 1280}
	w := do(t, s.Handler(), http.MethodPost, "/_tracker/events", tracker.Event{Kind: tracker.EventLoad, Page: page})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if n := len(s.Tracker().Visits()); n != 1 {
		t.Errorf("Visits() = %d after acknowledged event, want 1", n)
	}
}

func TestVisitsSurface(t *testing.T) {
	s, sub := newTestServer(t)
	h := s.Handler()

	records := []visit.Record{
		{Path: "/", Ref: "direct", Device: visit.Desktop, TS: "2025-10-16T10:00:00.000Z", Date: "2025-10-16"},
		{Path: "/slim/overview/", Ref: "direct", Device: visit.Desktop, TS: "2025-10-16T10:00:01.000Z", Date: "2025-10-16"},
	}

	bad := []visit.Record{{Path: "", Ref: "direct"}}
	if w := do(t, h, http.MethodPut, "/_tracker/visits", bad); w.Code != http.StatusBadRequest {
		t.Errorf("PUT invalid records status = %d, want 400", w.Code)
	}

	if w := do(t, h, http.MethodPut, "/_tracker/visits", records); w.Code != http.StatusOK {
		t.Fatalf("PUT visits status = %d: %s", w.Code, w.Body.String())
	}

	w := do(t, h, http.MethodPost, "/_tracker/submit", nil)
	var submit handlers.SubmitResponse
	json.Unmarshal(w.Body.Bytes(), &submit)
	if !submit.Submitted || submit.Count != 2 {
		t.Errorf("submit = %+v", submit)
	}
	if len(sub.payloads) != 1 || !issues.ValidTitle(sub.payloads[0].Title) ||
		!strings.HasPrefix(sub.payloads[0].Title, "[Visit Data] 2 visits - ") {
		t.Errorf("payloads = %+v", sub.payloads)
	}

	do(t, h, http.MethodPut, "/_tracker/visits", records)
	if w := do(t, h, http.MethodDelete, "/_tracker/visits", nil); w.Code != http.StatusOK {
		t.Errorf("DELETE visits status = %d", w.Code)
	}
	if n := len(s.Tracker().Visits()); n != 0 {
		t.Errorf("Visits() after DELETE = %d", n)
	}
}

func TestConfigHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/_tracker/config", nil)
	var cfg tracker.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Repo != "agntcy/docs" || cfg.BatchSize != 50 || !cfg.ForceTracking {
		t.Errorf("config = %+v", cfg)
	}

	if w := do(t, h, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d", w.Code)
	}

	page := visit.Page{Host: "docs.agntcy.org", Path: "/", ViewportWidth: 1280}
	do(t, h, http.MethodPost, "/_tracker/events", tracker.Event{Kind: tracker.EventLoad, Page: page})

	w = do(t, h, http.MethodGet, "/metrics", nil)
	body := w.Body.String()
	for _, want := range []string{`docsvisits_visits_total{outcome="recorded"} 1`, "docsvisits_buffered_visits 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := do(t, h, http.MethodOptions, "/_tracker/events", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestDocsDirOverridesBundledPages(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(dir, "index.html", "<html><body>custom</body></html>"); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.DocsDir = dir
	cfg.Store = storage.NewMemoryStore()
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	w := do(t, s.Handler(), http.MethodGet, "/", nil)
	body := w.Body.String()
	if !strings.Contains(body, "custom") || !strings.Contains(body, handlers.ScriptTag+"\n</body>") {
		t.Errorf("body = %s", body)
	}
	if w := do(t, s.Handler(), http.MethodGet, "/dir/overview/", nil); w.Code != http.StatusNotFound {
		t.Errorf("bundled page served despite docs dir: %d", w.Code)
	}
}

// seededStore marks a submission as just made, so a first visit does not
// trigger the interval flush.
func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := buffer.New(store).MarkSubmitted(time.Now()); err != nil {
		t.Fatalf("MarkSubmitted() error = %v", err)
	}
	return store
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}
