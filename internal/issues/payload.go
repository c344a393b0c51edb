// Package issues turns buffered visits into a GitHub issue payload, parses
// such payloads back, and submits them to the issue-creation endpoint.
//
// PAYLOAD FORMAT:
// The title reads "[Visit Data] N visits - YYYY-MM-DD". The body is an HTML
// comment header, a short summary, a fenced jsonl block with one compact
// record per line and an HTML comment footer. The downstream processor finds
// the batch by the jsonl fence, so the fence and the per-line encoding are
// the compatibility surface; the header and footer are informational.
//
// Records are encoded with HTML escaping disabled so that paths and
// referrers read the same in the issue as they did in the buffer.
package issues

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/config"
	"github.com/agntcy/docs-visits/internal/visit"
)

const (
	bodyHeader  = "<!-- AUTOMATED VISIT DATA - DO NOT EDIT -->"
	bodyFooter  = "<!-- This issue will be auto-processed and closed by GitHub Actions -->"
	titlePrefix = "[Visit Data]"
)

// Payload is the JSON body of an issue-creation request.
type Payload struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// BuildPayload renders records as an issue submitted at now with the given
// label. The automated label is always added after it.
func BuildPayload(records []visit.Record, label string, now time.Time) (Payload, error) {
	jsonl, err := EncodeJSONL(records)
	if err != nil {
		return Payload{}, err
	}

	submitted := visit.FormatTimestamp(now)

	var body strings.Builder
	body.WriteString(bodyHeader + "\n\n")
	fmt.Fprintf(&body, "**Visits**: %d\n", len(records))
	fmt.Fprintf(&body, "**Submitted**: %s\n\n", submitted)
	body.WriteString("```jsonl\n")
	body.WriteString(jsonl)
	body.WriteString("\n```\n\n")
	body.WriteString(bodyFooter)

	return Payload{
		Title:  fmt.Sprintf("%s %d visits - %s", titlePrefix, len(records), submitted[:10]),
		Body:   body.String(),
		Labels: []string{label, config.AutomatedLabel},
	}, nil
}

// EncodeJSONL writes one compact JSON object per record, newline separated,
// without a trailing newline. HTML characters are left unescaped.
func EncodeJSONL(records []visit.Record) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, r := range records {
		if err := enc.Encode(r); err != nil {
			return "", fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
