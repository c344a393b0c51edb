// Package issues payload parsing.
//
// ParseBody applies the issue processor's rules to a submitted body: the
// jsonl block is extracted, each line is decoded strictly (the five record
// fields and nothing else) and validated. Bad lines are collected as
// LineError values rather than failing the whole batch, matching how the
// processor skips them.
package issues

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agntcy/docs-visits/internal/visit"
)

// Limits applied by the issue processor.
const (
	MaxBodySize       = 1_000_000
	MaxVisitsPerIssue = 100
)

var (
	// ErrNoJSONL means the body carries no fenced jsonl block.
	ErrNoJSONL = errors.New("no JSONL code block found")

	jsonlBlock = regexp.MustCompile("(?s)```jsonl\\s*\\n(.*?)\\n```")
	titleRe    = regexp.MustCompile(`^\[Visit Data\] \d+ visits - \d{4}-\d{2}-\d{2}$`)

	recordFields = []string{"path", "ref", "device", "ts", "date"}
)

// ValidTitle reports whether title has the "[Visit Data] N visits - date" form.
func ValidTitle(title string) bool {
	return titleRe.MatchString(title)
}

// ExtractJSONL returns the trimmed content of the first jsonl block in body.
func ExtractJSONL(body string) (string, error) {
	if len(body) > MaxBodySize {
		return "", fmt.Errorf("issue body too large: %d bytes (max: %d)", len(body), MaxBodySize)
	}
	m := jsonlBlock.FindStringSubmatch(body)
	if m == nil {
		return "", ErrNoJSONL
	}
	return strings.TrimSpace(m[1]), nil
}

// LineError describes one rejected JSONL line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Parsed is the result of parsing an issue body: the accepted records in
// order and the lines that were skipped.
type Parsed struct {
	Records  []visit.Record
	Rejected []LineError
}

// ParseBody extracts and validates the visit records of an issue body the
// way the issue processor does. Invalid lines are skipped and reported in
// Rejected; structural problems (size, missing block, too many lines) fail
// the whole body.
func ParseBody(body string) (*Parsed, error) {
	content, err := ExtractJSONL(body)
	if err != nil {
		return nil, err
	}

	parsed := &Parsed{Records: []visit.Record{}}
	if content == "" {
		return parsed, nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) > MaxVisitsPerIssue {
		return nil, fmt.Errorf("too many visits: %d (max: %d)", len(lines), MaxVisitsPerIssue)
	}

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, err := parseLine(line)
		if err != nil {
			parsed.Rejected = append(parsed.Rejected, LineError{Line: i + 1, Err: err})
			continue
		}
		parsed.Records = append(parsed.Records, r)
	}

	return parsed, nil
}

func parseLine(line string) (visit.Record, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return visit.Record{}, fmt.Errorf("invalid JSON: %w", err)
	}

	values := make(map[string]string, len(recordFields))
	for _, name := range recordFields {
		v, ok := fields[name]
		if !ok {
			return visit.Record{}, fmt.Errorf("missing required field: %s", name)
		}
		s, ok := v.(string)
		if !ok {
			return visit.Record{}, fmt.Errorf("invalid type for %s: expected string", name)
		}
		values[name] = s
	}
	if len(fields) != len(recordFields) {
		for name := range fields {
			if _, ok := values[name]; !ok {
				return visit.Record{}, fmt.Errorf("unexpected field: %s", name)
			}
		}
	}

	r := visit.Record{
		Path:   values["path"],
		Ref:    values["ref"],
		Device: visit.Device(strings.ToLower(values["device"])),
		TS:     values["ts"],
		Date:   values["date"],
	}
	if err := visit.ValidateDownstream(r); err != nil {
		return visit.Record{}, err
	}
	return r, nil
}
