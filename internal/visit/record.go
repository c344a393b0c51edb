// Package visit defines the visit record the tracker stores and submits, and
// the page context it is collected from.
//
// RECORD FORMAT:
// A record is five strings serialized in a fixed order:
//
//	{"path":"/dir/overview/","ref":"direct","device":"desktop","ts":"2025-10-16T10:00:00.000Z","date":"2025-10-16"}
//
// The order is part of the wire format of submitted issues. ts is UTC with
// millisecond precision and date is always its first ten characters.
//
// DEVICE CLASSES:
//   - mobile: viewport narrower than 768 CSS pixels
//   - tablet: narrower than 1024
//   - desktop: everything else
package visit

import (
	"fmt"
	"time"

	"github.com/agntcy/docs-visits/internal/validate"
)

// Device is a coarse viewport class.
type Device string

const (
	Mobile  Device = "mobile"
	Tablet  Device = "tablet"
	Desktop Device = "desktop"
)

const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

// ClassifyDevice maps a viewport width in CSS pixels to a Device.
func ClassifyDevice(width int) Device {
	switch {
	case width < mobileMaxWidth:
		return Mobile
	case width < tabletMaxWidth:
		return Tablet
	default:
		return Desktop
	}
}

// TimestampLayout is the UTC millisecond ISO-8601 form browsers produce.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Record is one page visit. Field order is the wire order of the JSONL
// lines in submitted issues.
type Record struct {
	Path   string `json:"path" validate:"required,startswith=/"`
	Ref    string `json:"ref" validate:"required"`
	Device Device `json:"device" validate:"required,oneof=mobile tablet desktop"`
	TS     string `json:"ts" validate:"required,isots"`
	Date   string `json:"date" validate:"required,isodate"`
}

// Validate checks the record invariants: all fields present, a known device,
// a well-formed timestamp, and a date equal to the timestamp's first ten
// characters.
func (r Record) Validate() error {
	if err := validate.ValidateStruct(r); err != nil {
		return fmt.Errorf("invalid visit record: %w", err)
	}
	if r.TS[:10] != r.Date {
		return fmt.Errorf("invalid visit record: date %q does not match ts %q", r.Date, r.TS)
	}
	return nil
}

// Downstream mirrors the checks the issue processor applies to each JSONL
// line. It is stricter than Validate about path and referrer shape.
type Downstream struct {
	Path   string `validate:"docpath"`
	Ref    string `validate:"referrer"`
	Device string `validate:"oneof=mobile tablet desktop"`
	TS     string `validate:"isots"`
	Date   string `validate:"isodate"`
}

// ValidateDownstream checks r against the issue processor's rules. A record
// that passes Validate but fails here is still buffered and submitted; the
// processor drops it on its side. ParseBody uses this to predict that.
func ValidateDownstream(r Record) error {
	d := Downstream{Path: r.Path, Ref: r.Ref, Device: string(r.Device), TS: r.TS, Date: r.Date}
	if err := validate.ValidateStruct(d); err != nil {
		return fmt.Errorf("record rejected by processor rules: %w", err)
	}
	return nil
}
