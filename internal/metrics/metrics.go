// Package metrics exposes Prometheus counters for the account flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds the service metrics.
type Collector struct {
	operations   *prometheus.CounterVec
	mails        *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	cleanedUp    prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_auth_operations_total",
			Help: "Account operations by name and error kind.",
		}, []string{"operation", "result"}),
		mails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_auth_mails_total",
			Help: "Outgoing account emails by template and delivery outcome.",
		}, []string{"template", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_auth_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_auth_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_auth_expired_records_deleted_total",
			Help: "Expired verification records removed by the cleanup job.",
		}),
	}

	reg.MustRegister(c.operations, c.mails, c.httpRequests, c.httpLatency, c.cleanedUp)

	return c
}

// RecordOperation counts an account operation. result is "ok" or an error kind.
func (c *Collector) RecordOperation(operation, result string) {
	c.operations.WithLabelValues(operation, result).Inc()
}

// RecordMail counts an outgoing email.
func (c *Collector) RecordMail(template string, delivered bool) {
	outcome := OutcomeSuccess
	if !delivered {
		outcome = OutcomeFailure
	}
	c.mails.WithLabelValues(template, outcome).Inc()
}

// RecordHTTPRequest counts a served request and its latency.
func (c *Collector) RecordHTTPRequest(route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCleanup counts records removed by one cleanup run.
func (c *Collector) RecordCleanup(deleted int64) {
	c.cleanedUp.Add(float64(deleted))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
