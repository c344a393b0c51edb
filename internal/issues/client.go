// Package issues client for the GitHub issue-creation endpoint.
//
// This file submits visit payloads with go-resty: one POST per Create call,
// no retries and no credentials. A failed batch stays buffered in the
// tracker until the next threshold check. The endpoint is expected to be a
// proxy or a repository that accepts anonymous issue creation.
//
// REQUEST SHAPE:
//   - POST {baseURL}/repos/{owner}/{repo}/issues
//   - Accept: application/vnd.github.v3+json
//   - Content-Type: application/json
//   - Body: {"title", "body", "labels"} as built by BuildPayload
//
// Only HTTP 201 counts as success. All client logging goes to DEBUG through
// logging.RestyLogger and the request hooks below.
package issues

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/version"
	"github.com/go-resty/resty/v2"
)

// Issue is the subset of the created issue the client reads back.
type Issue struct {
	Number  int    `json:"number"`
	NodeID  string `json:"node_id"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
}

// StatusError is returned when the endpoint answers with anything but 201.
// Body holds the raw response text, which for GitHub is a JSON error
// document naming the cause (rate limit, missing authentication).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("issue creation failed with status %d: %s", e.StatusCode, e.Body)
}

// Submitter creates one issue per call. Client is the production
// implementation; tests and the docsite substitute recording fakes.
type Submitter interface {
	Create(ctx context.Context, p Payload) (*Issue, error)
}

// Client posts payloads to {baseURL}/repos/{repo}/issues. It makes exactly
// one attempt per call and sends no credentials.
type Client struct {
	client  *resty.Client
	baseURL string
	repo    string
}

// NewClient returns a Client for repo ("owner/name") on the API at baseURL.
//
// A trailing slash on baseURL is dropped. The repo is substituted as a raw
// path parameter so the slash between owner and name survives. timeout
// bounds the whole request, including reading the response.
func NewClient(baseURL, repo string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	client := resty.New()

	client.SetLogger(logging.RestyLogger{})

	client.
		SetTimeout(timeout).
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", version.UserAgent)

	// Request lifecycle hooks, visible at DEBUG only
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Submitting visit issue: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("Issue endpoint response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Issue request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &Client{client: client, baseURL: baseURL, repo: repo}
}

// Create submits p once. A transport failure or a non-201 answer is an
// error; a *StatusError carries the status and response body.
//
// The returned Issue is decoded from the 201 response. Fields the endpoint
// omits are left zero; the tracker only logs the number.
func (c *Client) Create(ctx context.Context, p Payload) (*Issue, error) {
	var issue Issue

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&issue).
		SetRawPathParams(map[string]string{"repo": c.repo}).
		Post("/repos/{repo}/issues")
	if err != nil {
		return nil, fmt.Errorf("failed to reach issue endpoint at %s: %w", c.baseURL, err)
	}

	if resp.StatusCode() != http.StatusCreated {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &issue, nil
}
