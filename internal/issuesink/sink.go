// Package issuesink is a local stand-in for the GitHub issue-creation
// endpoint. It records every issue it receives and can be told to fail, so
// submissions can be exercised without network access or credentials.
//
// HTTP SURFACE:
//   - POST /repos/{owner}/{repo}/issues: record the issue, answer 201 with
//     number, node_id and html_url (or the configured failure status)
//   - GET /issues: every recorded issue, oldest first
//   - DELETE /issues: forget recorded issues
//   - PUT /fail {"status": N}: fail creations with N (400..599), 0 restores success
//
// Issue numbers start at 1 and node ids are random UUIDs. A failed creation
// is not recorded.
package issuesink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Issue is one recorded issue.
type Issue struct {
	Number    int       `json:"number"`
	NodeID    string    `json:"node_id"`
	Repo      string    `json:"repo"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []string  `json:"labels"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink records issues posted to /repos/{owner}/{repo}/issues.
type Sink struct {
	mu         sync.Mutex
	issues     []Issue
	failStatus int

	httpServer *http.Server
	listener   net.Listener
}

// New returns an empty sink that accepts every issue.
func New() *Sink {
	return &Sink{}
}

// FailWith makes the sink answer every creation request with status. Zero
// restores normal behaviour.
func (s *Sink) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

// Issues returns a copy of the recorded issues in arrival order.
func (s *Sink) Issues() []Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Issue(nil), s.issues...)
}

// Reset forgets all recorded issues.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = nil
}

// Handler returns the sink's router.
func (s *Sink) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/repos/:owner/:repo/issues", s.handleCreate)
	router.GET("/issues", s.handleList)
	router.DELETE("/issues", s.handleReset)
	router.PUT("/fail", s.handleFail)
	return router
}

func (s *Sink) handleCreate(c *gin.Context) {
	s.mu.Lock()
	failStatus := s.failStatus
	s.mu.Unlock()

	if failStatus != 0 {
		c.JSON(failStatus, gin.H{"message": http.StatusText(failStatus)})
		return
	}

	var p issues.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Problems parsing JSON"})
		return
	}
	if p.Title == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation Failed"})
		return
	}

	repo := c.Param("owner") + "/" + c.Param("repo")

	s.mu.Lock()
	issue := Issue{
		Number:    len(s.issues) + 1,
		NodeID:    uuid.NewString(),
		Repo:      repo,
		Title:     p.Title,
		Body:      p.Body,
		Labels:    p.Labels,
		CreatedAt: time.Now().UTC(),
	}
	issue.HTMLURL = fmt.Sprintf("https://github.com/%s/issues/%d", repo, issue.Number)
	s.issues = append(s.issues, issue)
	s.mu.Unlock()

	logging.Debug("Issue sink: recorded issue #%d %q", issue.Number, issue.Title)
	c.JSON(http.StatusCreated, issue)
}

func (s *Sink) handleList(c *gin.Context) {
	list := s.Issues()
	c.JSON(http.StatusOK, gin.H{"issues": list, "count": len(list)})
}

func (s *Sink) handleReset(c *gin.Context) {
	s.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Sink) handleFail(c *gin.Context) {
	var req struct {
		Status int `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Status != 0 && (req.Status < 400 || req.Status > 599) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be 0 or an HTTP error code"})
		return
	}
	s.FailWith(req.Status)
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// Start serves the sink on addr ("host:port", port 0 picks one).
func (s *Sink) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind issue sink to %s: %w", addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Issue sink failed: %v", err)
		}
	}()

	logging.Info("Issue sink listening on %s", s.URL())
	return nil
}

// URL returns the sink's base URL, usable as an API base URL.
func (s *Sink) URL() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// Shutdown stops the sink's HTTP server.
func (s *Sink) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
