// Package display formats docsvisits command output as tables or JSON.
//
// Table output goes through text/tabwriter, relative times and sizes through
// go-humanize. JSON output is indented and mirrors the table columns.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/visit"
	"github.com/dustin/go-humanize"
)

// Out is where command output is written.
var Out io.Writer = os.Stdout

// BufferSummary is the JSON shape of `visits ls`.
type BufferSummary struct {
	Visits     []visit.Record `json:"visits"`
	Count      int            `json:"count"`
	Capacity   int            `json:"capacity"`
	LastSubmit *time.Time     `json:"lastSubmit"`
}

func encodeJSON(v any) {
	encoder := json.NewEncoder(Out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Out, "Error encoding JSON output")
	}
}

// lastSubmitText renders the last submission time; the epoch means never.
func lastSubmitText(t time.Time) string {
	if t.UnixMilli() == 0 {
		return "never"
	}
	return humanize.Time(t)
}

// recordAge renders a record timestamp relative to now, falling back to the
// raw value when it does not parse.
func recordAge(ts string) string {
	t, err := time.Parse(visit.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

// DisplayVisits shows the buffered visits and the submission state.
func DisplayVisits(visits []visit.Record, capacity int, lastSubmit time.Time) {
	if config.Global.Output == "json" {
		summary := BufferSummary{Visits: visits, Count: len(visits), Capacity: capacity}
		if lastSubmit.UnixMilli() != 0 {
			summary.LastSubmit = &lastSubmit
		}
		encodeJSON(summary)
		return
	}

	if len(visits) == 0 {
		fmt.Fprintln(Out, "No buffered visits")
	} else {
		w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tPATH\tREFERRER\tDEVICE\tTIMESTAMP\tAGE")
		for i, v := range visits {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, v.Path, v.Ref, v.Device, v.TS, recordAge(v.TS))
		}
		w.Flush()
		fmt.Fprintln(Out)
	}

	fmt.Fprintf(Out, "Buffered: %s of %s\n", humanize.Comma(int64(len(visits))), humanize.Comma(int64(capacity)))
	fmt.Fprintf(Out, "Last submit: %s\n", lastSubmitText(lastSubmit))
}

// DisplayConfig shows an effective tracker configuration.
func DisplayConfig(cfg tracker.Config) {
	if config.Global.Output == "json" {
		encodeJSON(cfg)
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Repo:\t%s\n", cfg.Repo)
	fmt.Fprintf(w, "Issue label:\t%s\n", cfg.IssueLabel)
	fmt.Fprintf(w, "Batch size:\t%d\n", cfg.BatchSize)
	fmt.Fprintf(w, "Submit interval:\t%s\n", cfg.GetSubmitInterval())
	fmt.Fprintf(w, "Buffer capacity:\t%d\n", cfg.BufferCapacity)
	fmt.Fprintf(w, "Hidden submit minimum:\t%d\n", cfg.HiddenMinimum)
	if period := cfg.GetCheckPeriod(); period > 0 {
		fmt.Fprintf(w, "Check period:\t%s\n", period)
	} else {
		fmt.Fprintf(w, "Check period:\tdisabled\n")
	}
	fmt.Fprintf(w, "API base URL:\t%s\n", cfg.APIBaseURL)
	fmt.Fprintf(w, "Request timeout:\t%s\n", cfg.GetRequestTimeout())
	fmt.Fprintf(w, "Force tracking:\t%t\n", cfg.ForceTracking)
}

// DisplayPayload shows the issue a submission would create.
func DisplayPayload(p issues.Payload) {
	if config.Global.Output == "json" {
		encodeJSON(p)
		return
	}
	fmt.Fprintf(Out, "Title:  %s\n", p.Title)
	fmt.Fprintf(Out, "Labels: %v\n", p.Labels)
	fmt.Fprintf(Out, "Size:   %s\n\n", humanize.Bytes(uint64(len(p.Body))))
	fmt.Fprintln(Out, p.Body)
}

// SubmitResult is the JSON shape of `submit`.
type SubmitResult struct {
	Submitted bool `json:"submitted"`
	Count     int  `json:"count"`
	Remaining int  `json:"remaining"`
}

// DisplaySubmit shows the outcome of a submission attempt.
func DisplaySubmit(r SubmitResult) {
	if config.Global.Output == "json" {
		encodeJSON(r)
		return
	}
	switch {
	case r.Count == 0:
		fmt.Fprintln(Out, "No buffered visits to submit")
	case r.Submitted:
		fmt.Fprintf(Out, "Submitted %s visits\n", humanize.Comma(int64(r.Count)))
	default:
		fmt.Fprintf(Out, "Submission failed, %s visits kept for the next attempt\n", humanize.Comma(int64(r.Remaining)))
	}
}
