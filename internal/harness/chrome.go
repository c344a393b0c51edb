// Package harness Chrome driver.
//
// ChromeBrowser runs headless Chrome through chromedp. Every tracker call is
// a JavaScript evaluation against window.docsVisitTracker with promises
// awaited, so the checks exercise the bridge script exactly as a reader's
// browser runs it.
//
// CHROME SETTINGS:
//   - Headless with --no-sandbox and --disable-setuid-sandbox (containers)
//   - 1280x800 window and viewport, so every page classifies as desktop
//   - Console log and debug lines forwarded to ChromeOptions.Console
//
// Navigation waits for the networkIdle lifecycle event, bounded by
// idleTimeout; a page that never goes idle is logged at DEBUG and used as is.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/docsite/handlers"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/visit"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800
	idleTimeout    = 15 * time.Second
)

// ChromeOptions configures the headless Chrome session.
type ChromeOptions struct {
	ExecPath string            // Chrome binary; empty lets chromedp find one
	Console  func(line string) // receives page console.log/console.debug lines
}

// ChromeBrowser is a Browser backed by headless Chrome over the DevTools
// protocol.
type ChromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChromeBrowser launches headless Chrome with a 1280x800 viewport and
// sandboxing disabled, for container use.
func NewChromeBrowser(parent context.Context, opts ChromeOptions) (*ChromeBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { logging.Debug(format, args...) }),
	)

	if opts.Console != nil {
		chromedp.ListenTarget(ctx, func(ev any) {
			e, ok := ev.(*runtime.EventConsoleAPICalled)
			if !ok || (e.Type != runtime.APITypeLog && e.Type != runtime.APITypeDebug) {
				return
			}
			opts.Console(consoleText(e.Args))
		})
	}

	// The first Run starts the browser.
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		page.SetLifecycleEventsEnabled(true),
	); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &ChromeBrowser{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

// consoleText renders console arguments the way DevTools prints them:
// strings unquoted, other values by JSON or description.
func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg.Value != nil:
			var s string
			if err := json.Unmarshal(arg.Value, &s); err == nil {
				parts = append(parts, s)
			} else {
				parts = append(parts, string(arg.Value))
			}
		case arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, string(arg.Type))
		}
	}
	return strings.Join(parts, " ")
}

// run executes actions on the browser context, bounded by ctx.
func (b *ChromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// loadAndWaitIdle runs a navigation action and waits for the page's
// networkIdle lifecycle event.
func (b *ChromeBrowser) loadAndWaitIdle(ctx context.Context, action chromedp.Action) error {
	idle := make(chan struct{}, 1)
	listenCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()

	chromedp.ListenTarget(listenCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := b.run(ctx, action); err != nil {
		return err
	}

	select {
	case <-idle:
	case <-time.After(idleTimeout):
		logging.Debug("Network did not go idle within %v, continuing", idleTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (b *ChromeBrowser) Open(ctx context.Context, url string) error {
	if err := b.loadAndWaitIdle(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func (b *ChromeBrowser) Reload(ctx context.Context) error {
	if err := b.loadAndWaitIdle(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return nil
}

// eval evaluates expr in the page, awaiting a returned promise, and decodes
// the result into out.
func (b *ChromeBrowser) eval(ctx context.Context, expr string, out any) error {
	return b.run(ctx, chromedp.Evaluate(expr, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (b *ChromeBrowser) TrackerPresent(ctx context.Context) (bool, error) {
	var present bool
	err := b.eval(ctx, `typeof window.docsVisitTracker !== 'undefined'`, &present)
	return present, err
}

func (b *ChromeBrowser) TrackerConfig(ctx context.Context) (handlers.PublicConfig, error) {
	var cfg handlers.PublicConfig
	err := b.eval(ctx, `window.docsVisitTracker.config`, &cfg)
	return cfg, err
}

func (b *ChromeBrowser) PageContext(ctx context.Context) (visit.Page, error) {
	var p visit.Page
	err := b.eval(ctx, `window.docsVisitTracker.page()`, &p)
	return p, err
}

func (b *ChromeBrowser) Visits(ctx context.Context) ([]visit.Record, error) {
	var records []visit.Record
	if err := b.eval(ctx, `window.docsVisitTracker.getVisits()`, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []visit.Record{}
	}
	return records, nil
}

func (b *ChromeBrowser) SetVisits(ctx context.Context, records []visit.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return b.eval(ctx, fmt.Sprintf(`window.docsVisitTracker.setVisits(%s)`, data), nil)
}

func (b *ChromeBrowser) ClearVisits(ctx context.Context) error {
	return b.eval(ctx, `window.docsVisitTracker.clearVisits()`, nil)
}

func (b *ChromeBrowser) Submit(ctx context.Context) (bool, error) {
	var submitted bool
	err := b.eval(ctx, `window.docsVisitTracker.submit()`, &submitted)
	return submitted, err
}

// Close shuts the browser down.
func (b *ChromeBrowser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}
