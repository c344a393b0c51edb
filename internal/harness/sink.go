package harness

import (
	"time"

	"github.com/agntcy/docs-visits/internal/issuesink"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/go-resty/resty/v2"
)

// RemoteSink controls an issue sink running in another process through its
// /issues and /fail endpoints. Errors are logged; a broken control channel
// shows up as failed submission checks.
type RemoteSink struct {
	client *resty.Client
}

// NewRemoteSink returns a RemoteSink for the sink at baseURL.
func NewRemoteSink(baseURL string, timeout time.Duration) *RemoteSink {
	client := resty.New()
	client.SetLogger(logging.RestyLogger{})
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &RemoteSink{client: client}
}

func (s *RemoteSink) FailWith(status int) {
	resp, err := s.client.R().
		SetBody(map[string]int{"status": status}).
		Put("/fail")
	if err != nil {
		logging.Error("Issue sink: set failure status: %v", err)
		return
	}
	if resp.IsError() {
		logging.Error("Issue sink: set failure status: %s", resp.Status())
	}
}

func (s *RemoteSink) Issues() []issuesink.Issue {
	var out struct {
		Issues []issuesink.Issue `json:"issues"`
	}
	resp, err := s.client.R().SetResult(&out).Get("/issues")
	if err != nil {
		logging.Error("Issue sink: list issues: %v", err)
		return nil
	}
	if resp.IsError() {
		logging.Error("Issue sink: list issues: %s", resp.Status())
		return nil
	}
	return out.Issues
}

func (s *RemoteSink) Reset() {
	resp, err := s.client.R().Delete("/issues")
	if err != nil {
		logging.Error("Issue sink: reset: %v", err)
		return
	}
	if resp.IsError() {
		logging.Error("Issue sink: reset: %s", resp.Status())
	}
}
