package tracker

import (
	"fmt"

	"github.com/agntcy/docs-visits/internal/visit"
)

// EventKind is a page lifecycle event reported by the embedding host.
type EventKind string

const (
	// EventLoad is the initial page view.
	EventLoad EventKind = "load"
	// EventNavigate is an in-page path change.
	EventNavigate EventKind = "navigate"
	// EventHidden is the page becoming hidden.
	EventHidden EventKind = "hidden"
)

// Event is one lifecycle event with the page context it happened in.
type Event struct {
	Kind EventKind  `json:"kind" validate:"required,oneof=load navigate hidden"`
	Page visit.Page `json:"page"`

	done chan struct{}
}

// QueueFullError is returned by Dispatch when the event queue is full.
type QueueFullError struct {
	Current  int // Queue length when the event was refused
	Capacity int // Maximum queue capacity
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("event queue full: %d/%d", e.Current, e.Capacity)
}
