package issues

import (
	"strings"
	"testing"
	"time"

	"github.com/agntcy/docs-visits/internal/visit"
)

var submittedAt = time.Date(2025, 10, 16, 9, 15, 30, 250000000, time.UTC)

func sampleRecords() []visit.Record {
	return []visit.Record{
		{Path: "/", Ref: "direct", Device: visit.Desktop, TS: "2025-10-16T09:00:00.000Z", Date: "2025-10-16"},
		{Path: "/dir/overview/", Ref: "github.com", Device: visit.Mobile, TS: "2025-10-16T09:01:00.000Z", Date: "2025-10-16"},
	}
}

func TestBuildPayload(t *testing.T) {
	p, err := BuildPayload(sampleRecords(), "visit-data", submittedAt)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	if p.Title != "[Visit Data] 2 visits - 2025-10-16" {
		t.Errorf("Title = %q", p.Title)
	}
	if !ValidTitle(p.Title) {
		t.Errorf("ValidTitle(%q) = false", p.Title)
	}
	if len(p.Labels) != 2 || p.Labels[0] != "visit-data" || p.Labels[1] != "automated" {
		t.Errorf("Labels = %v", p.Labels)
	}

	want := "<!-- AUTOMATED VISIT DATA - DO NOT EDIT -->\n\n" +
		"**Visits**: 2\n" +
		"**Submitted**: 2025-10-16T09:15:30.250Z\n\n" +
		"```jsonl\n" +
		`{"path":"/","ref":"direct","device":"desktop","ts":"2025-10-16T09:00:00.000Z","date":"2025-10-16"}` + "\n" +
		`{"path":"/dir/overview/","ref":"github.com","device":"mobile","ts":"2025-10-16T09:01:00.000Z","date":"2025-10-16"}` + "\n" +
		"```\n\n" +
		"<!-- This issue will be auto-processed and closed by GitHub Actions -->"
	if p.Body != want {
		t.Errorf("Body mismatch\n got: %q\nwant: %q", p.Body, want)
	}
}

func TestEncodeJSONLKeepsHTMLCharacters(t *testing.T) {
	records := []visit.Record{
		{Path: "/a&b/<c>/", Ref: "direct", Device: visit.Tablet, TS: "2025-10-16T09:00:00.000Z", Date: "2025-10-16"},
	}

	out, err := EncodeJSONL(records)
	if err != nil {
		t.Fatalf("EncodeJSONL() error = %v", err)
	}
	if !strings.Contains(out, `"path":"/a&b/<c>/"`) {
		t.Errorf("EncodeJSONL() escaped HTML characters: %s", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("EncodeJSONL() left a trailing newline")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	records := sampleRecords()
	p, err := BuildPayload(records, "visit-data", submittedAt)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	parsed, err := ParseBody(p.Body)
	if err != nil {
		t.Fatalf("ParseBody() error = %v", err)
	}
	if len(parsed.Rejected) != 0 {
		t.Fatalf("ParseBody() rejected lines: %v", parsed.Rejected)
	}
	if len(parsed.Records) != len(records) {
		t.Fatalf("ParseBody() = %d records, want %d", len(parsed.Records), len(records))
	}
	for i := range records {
		if parsed.Records[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, parsed.Records[i], records[i])
		}
	}
}
