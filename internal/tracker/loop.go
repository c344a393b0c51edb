// Package tracker event loop.
//
// This file serializes page lifecycle events the way a browser tab's single
// event loop does: one goroutine handles events in arrival order, so an
// append and a submission can never interleave within one tracker.
//
// LOOP LIFECYCLE:
//   - Start: create the queue, launch the loop and the optional periodic check
//   - Dispatch: enqueue without blocking; a full queue is reported, not waited on
//   - Stop: refuse new events, drain the ones already queued, then return
//
// When no loop is running, callers handle events inline with Handle; the
// tracker mutex still serializes them with the public surface methods.
package tracker

import (
	"context"
	"time"

	"github.com/agntcy/docs-visits/internal/logging"
)

// Start launches the event loop and, when the check period is positive, the
// periodic threshold check. Calling Start on a running tracker is a no-op.
//
// A check period of 0 disables the ticker entirely. The harness relies on
// this so that injected records are not flushed between its steps.
func (t *Tracker) Start() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if t.running {
		return
	}

	t.events = make(chan Event, eventQueueSize)
	t.stopCh = make(chan struct{})
	t.running = true

	t.wg.Add(1)
	go t.run()
	logging.Info("Tracker: Started event loop (check period %v)", t.cfg.GetCheckPeriod())
}

// Stop ends the loop after processing every event already queued.
//
// Dispatch starts returning ErrNotRunning before the drain begins, so no
// event accepted by Dispatch is ever lost. Stop blocks until the loop
// goroutine has exited and is safe to call more than once.
func (t *Tracker) Stop() {
	t.runMu.Lock()
	if !t.running {
		t.runMu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	t.runMu.Unlock()

	t.wg.Wait()
	logging.Info("Tracker: Stopped event loop")
}

// Dispatch queues ev for the event loop. The returned channel is closed
// once the event has been handled.
//
// Returns ErrNotRunning when the loop is stopped and *QueueFullError when
// the queue is at capacity. Dispatch never blocks; the docsite maps a full
// queue to 503 so a burst of page events cannot stall request handlers.
func (t *Tracker) Dispatch(ev Event) (<-chan struct{}, error) {
	t.runMu.RLock()
	defer t.runMu.RUnlock()
	if !t.running {
		return nil, ErrNotRunning
	}

	ev.done = make(chan struct{})
	select {
	case t.events <- ev:
		return ev.done, nil
	default:
		return nil, &QueueFullError{Current: len(t.events), Capacity: cap(t.events)}
	}
}

// run is the loop goroutine. Events and ticks share one select, so a
// periodic check never runs concurrently with an event.
func (t *Tracker) run() {
	defer t.wg.Done()

	var tick <-chan time.Time
	if period := t.cfg.GetCheckPeriod(); period > 0 {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := context.Background()
	for {
		select {
		case <-t.stopCh:
			t.drain(ctx)
			return

		case ev := <-t.events:
			t.process(ctx, ev)

		case <-tick:
			t.Check(ctx)
		}
	}
}

func (t *Tracker) process(ctx context.Context, ev Event) {
	t.Handle(ctx, ev)
	if ev.done != nil {
		close(ev.done)
	}
}

// drain processes whatever is still queued at stop time.
func (t *Tracker) drain(ctx context.Context) {
	for {
		select {
		case ev := <-t.events:
			t.process(ctx, ev)
		default:
			return
		}
	}
}
