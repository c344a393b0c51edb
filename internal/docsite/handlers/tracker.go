// Package handlers tracker endpoints.
//
// This file exposes the tracker under /_tracker. The bridge script and the
// harness HTTP driver are its only intended callers.
//
// ENDPOINTS:
//   - POST /events: lifecycle event, 202 once handled, 503 when the queue is full
//   - GET /visits, PUT /visits, DELETE /visits: read, replace, clear the buffer
//   - POST /submit: flush now, regardless of thresholds
//   - GET /config: the full tracker configuration
//
// Handlers take the Tracker interface, so tests drive them with a fake and
// no store.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/validate"
	"github.com/agntcy/docs-visits/internal/visit"
	"github.com/gin-gonic/gin"
)

// Tracker is the tracker surface the host exposes over HTTP.
type Tracker interface {
	Config() tracker.Config
	Visits() []visit.Record
	Clear()
	ReplaceVisits(records []visit.Record) error
	ForceSubmit(ctx context.Context) bool
	Dispatch(ev tracker.Event) (<-chan struct{}, error)
	Handle(ctx context.Context, ev tracker.Event)
}

// VisitsResponse is the body of GET /_tracker/visits.
type VisitsResponse struct {
	Visits []visit.Record `json:"visits"`
	Count  int            `json:"count"`
}

// SubmitResponse is the body of POST /_tracker/submit.
type SubmitResponse struct {
	Submitted bool `json:"submitted"`
	Count     int  `json:"count"`
}

// HandleEvent accepts a lifecycle event from the bridge script and answers
// once the tracker has handled it.
//
// With the event loop running, the event is dispatched and the handler
// waits for it; without one (tests, embedded use) the event is handled
// inline. Either way a 202 means the visit is already in the buffer. A
// client that disconnects while waiting gets no answer, but the event is
// still processed.
func HandleEvent(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ev tracker.Event
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event", "details": err.Error()})
			return
		}
		if err := validate.ValidateStruct(ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event", "details": err.Error()})
			return
		}

		done, err := tr.Dispatch(ev)
		var queueFull *tracker.QueueFullError
		switch {
		case errors.Is(err, tracker.ErrNotRunning):
			// No event loop (tests, one-shot CLI use): handle inline.
			tr.Handle(c.Request.Context(), ev)
		case errors.As(err, &queueFull):
			logging.Warn("Dropping %s event: %v", ev.Kind, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		default:
			select {
			case <-done:
			case <-c.Request.Context().Done():
				return
			}
		}

		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "kind": ev.Kind})
	}
}

// HandleVisits returns the buffered visits.
func HandleVisits(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		visits := tr.Visits()
		c.JSON(http.StatusOK, VisitsResponse{Visits: visits, Count: len(visits)})
	}
}

// HandleReplaceVisits overwrites the buffer with the posted records. This is
// the page's direct storage access: no eligibility checks, but every record
// must be well formed.
func HandleReplaceVisits(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []visit.Record
		if err := c.ShouldBindJSON(&records); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid records", "details": err.Error()})
			return
		}
		for i, r := range records {
			if err := r.Validate(); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record", "index": i, "details": err.Error()})
				return
			}
		}

		if err := tr.ReplaceVisits(records); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "stored", "count": len(records)})
	}
}

// HandleClearVisits empties the buffer.
func HandleClearVisits(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tr.Clear()
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}

// HandleSubmit flushes the buffer regardless of thresholds. The response
// always has status 200; Submitted carries the outcome and Count the number
// of visits that were buffered before the attempt.
func HandleSubmit(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		count := len(tr.Visits())
		submitted := tr.ForceSubmit(c.Request.Context())
		c.JSON(http.StatusOK, SubmitResponse{Submitted: submitted, Count: count})
	}
}

// HandleConfig returns the full tracker configuration.
func HandleConfig(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tr.Config())
	}
}
