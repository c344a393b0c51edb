// Package metrics exposes tracker outcomes as Prometheus metrics.
//
// EXPOSED METRICS:
//   - docsvisits_visits_total{outcome}: recorded, skipped (ineligible page), failed (storage)
//   - docsvisits_submissions_total{outcome}: success, failure, empty
//   - docsvisits_buffered_visits: buffer length, read from the store on each scrape
//
// Collectors register on the Registerer passed to New. The docsite uses a
// private registry per server; `docsvisits serve` adds Go and process
// collectors to it.
package metrics

import (
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Visit outcomes.
const (
	VisitRecorded = "recorded"
	VisitSkipped  = "skipped"
	VisitFailed   = "failed"
)

// Submission outcomes.
const (
	SubmitSuccess = "success"
	SubmitFailure = "failure"
	SubmitEmpty   = "empty"
)

var bufferedDesc = prometheus.NewDesc(
	"docsvisits_buffered_visits",
	"Number of visits waiting in the buffer",
	nil,
	nil,
)

// Metrics holds the tracker's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	visits      *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. size is read on
// every scrape to report the buffer length; it may be nil.
func New(reg prometheus.Registerer, size func() (int, error)) *Metrics {
	m := &Metrics{
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsvisits_visits_total",
			Help: "Visits seen by the tracker by outcome",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsvisits_submissions_total",
			Help: "Issue submissions attempted by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.visits, m.submissions)
	if size != nil {
		reg.MustRegister(&bufferCollector{size: size})
	}
	return m
}

// Visit counts one visit with the given outcome.
func (m *Metrics) Visit(outcome string) {
	if m == nil {
		return
	}
	m.visits.WithLabelValues(outcome).Inc()
}

// Submission counts one submission attempt with the given outcome.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// bufferCollector reads the buffer length from storage on each scrape.
type bufferCollector struct {
	size func() (int, error)
}

func (c *bufferCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bufferedDesc
}

func (c *bufferCollector) Collect(ch chan<- prometheus.Metric) {
	n, err := c.size()
	if err != nil {
		logging.Debug("Failed to collect buffered visit count: %v", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(bufferedDesc, prometheus.GaugeValue, float64(n))
}
