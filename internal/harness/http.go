// Package harness HTTP driver.
//
// HTTPBrowser replaces the page with plain requests:
//   - Open fetches the page and, when the bridge script tag is present,
//     posts the load event the script would post
//   - Tracker calls map to GET, PUT and DELETE /_tracker/visits,
//     POST /_tracker/submit and GET /_tracker/config
//   - The page context is a desktop browser with no referrer
//
// It runs no JavaScript, so it cannot catch defects in the bridge script
// itself. The runner tests use it; CI without Chrome can too.
package harness

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/docsite/handlers"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/version"
	"github.com/agntcy/docs-visits/internal/visit"
	"github.com/go-resty/resty/v2"
)

// HTTPBrowser is a script-less Browser: it fetches pages and talks to the
// tracker endpoints the way the bridge script would. It needs no Chrome and
// serves tests and CI machines without one.
type HTTPBrowser struct {
	client  *resty.Client
	current *url.URL
	tagged  bool
}

// NewHTTPBrowser returns an HTTPBrowser with the given request timeout.
func NewHTTPBrowser(timeout time.Duration) *HTTPBrowser {
	client := resty.New()
	client.SetLogger(logging.RestyLogger{})
	client.
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent)

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Harness request: %s %s", req.Method, req.URL)
		return nil
	})

	return &HTTPBrowser{client: client}
}

// endpoint resolves a tracker path against the origin of the open page.
func (b *HTTPBrowser) endpoint(path string) (string, error) {
	if b.current == nil {
		return "", fmt.Errorf("no page open")
	}
	u := *b.current
	u.Path = path
	u.RawQuery = ""
	return u.String(), nil
}

func (b *HTTPBrowser) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	resp, err := b.client.R().SetContext(ctx).SetHeader("Accept", "text/html").Get(rawURL)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rawURL, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("failed to open %s: status %d", rawURL, resp.StatusCode())
	}

	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		u = resp.RawResponse.Request.URL
	}
	b.current = u
	b.tagged = strings.Contains(resp.String(), handlers.ScriptTag)

	if b.tagged {
		return b.sendLoad(ctx)
	}
	return nil
}

// sendLoad reports the page view as the bridge script does on load.
func (b *HTTPBrowser) sendLoad(ctx context.Context) error {
	p, err := b.PageContext(ctx)
	if err != nil {
		return err
	}
	target, err := b.endpoint("/_tracker/events")
	if err != nil {
		return err
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(tracker.Event{Kind: tracker.EventLoad, Page: p}).
		Post(target)
	if err != nil {
		return fmt.Errorf("failed to report load: %w", err)
	}
	if resp.StatusCode() != 202 {
		return fmt.Errorf("load event rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (b *HTTPBrowser) Reload(ctx context.Context) error {
	if b.current == nil {
		return fmt.Errorf("no page open")
	}
	return b.Open(ctx, b.current.String())
}

func (b *HTTPBrowser) TrackerPresent(ctx context.Context) (bool, error) {
	if !b.tagged {
		return false, nil
	}
	target, err := b.endpoint("/_tracker/tracker.js")
	if err != nil {
		return false, err
	}
	resp, err := b.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return false, err
	}
	return resp.StatusCode() == 200 && strings.Contains(resp.String(), "window.docsVisitTracker"), nil
}

func (b *HTTPBrowser) TrackerConfig(ctx context.Context) (handlers.PublicConfig, error) {
	var cfg tracker.Config
	if err := b.getJSON(ctx, "/_tracker/config", &cfg); err != nil {
		return handlers.PublicConfig{}, err
	}
	return handlers.PublicConfig{
		Repo:           cfg.Repo,
		BatchSize:      cfg.BatchSize,
		SubmitInterval: cfg.SubmitIntervalMs,
		IssueLabel:     cfg.IssueLabel,
	}, nil
}

// PageContext describes the open page as a desktop browser with no
// referrer would.
func (b *HTTPBrowser) PageContext(ctx context.Context) (visit.Page, error) {
	if b.current == nil {
		return visit.Page{}, fmt.Errorf("no page open")
	}
	return visit.Page{
		Host:          b.current.Hostname(),
		Path:          b.current.EscapedPath(),
		UserAgent:     version.UserAgent,
		ViewportWidth: viewportWidth,
	}, nil
}

func (b *HTTPBrowser) Visits(ctx context.Context) ([]visit.Record, error) {
	var resp handlers.VisitsResponse
	if err := b.getJSON(ctx, "/_tracker/visits", &resp); err != nil {
		return nil, err
	}
	if resp.Visits == nil {
		resp.Visits = []visit.Record{}
	}
	return resp.Visits, nil
}

func (b *HTTPBrowser) SetVisits(ctx context.Context, records []visit.Record) error {
	return b.send(ctx, "PUT", "/_tracker/visits", records, nil)
}

func (b *HTTPBrowser) ClearVisits(ctx context.Context) error {
	return b.send(ctx, "DELETE", "/_tracker/visits", nil, nil)
}

func (b *HTTPBrowser) Submit(ctx context.Context) (bool, error) {
	var resp handlers.SubmitResponse
	if err := b.send(ctx, "POST", "/_tracker/submit", nil, &resp); err != nil {
		return false, err
	}
	return resp.Submitted, nil
}

func (b *HTTPBrowser) Close() error {
	return nil
}

func (b *HTTPBrowser) getJSON(ctx context.Context, path string, out any) error {
	return b.send(ctx, "GET", path, nil, out)
}

func (b *HTTPBrowser) send(ctx context.Context, method, path string, body, out any) error {
	target, err := b.endpoint(path)
	if err != nil {
		return err
	}

	req := b.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, target)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), resp.String())
	}
	return nil
}
