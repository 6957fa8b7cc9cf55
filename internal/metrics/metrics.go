// Package metrics collects and exposes Prometheus metrics for the
// HTTP surface and the background task bridge.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service's metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram

	jobsEnqueued  prometheus.Counter
	jobsProcessed prometheus.Counter
	jobsFailed    prometheus.Counter
	notifications prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "microblog_http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "microblog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		jobsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microblog_jobs_enqueued_total",
			Help: "Jobs submitted to the queue.",
		}),
		jobsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microblog_jobs_processed_total",
			Help: "Jobs completed by a worker.",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microblog_jobs_failed_total",
			Help: "Jobs that returned an error.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "microblog_notifications_written_total",
			Help: "Notification writes, including supersedes.",
		}),
	}
	c.registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.jobsEnqueued,
		c.jobsProcessed,
		c.jobsFailed,
		c.notifications,
	)
	return c
}

// The Record methods are safe to call on a nil Collector, so components
// can record unconditionally whether or not metrics are configured.

func (c *Collector) RecordJobEnqueued() {
	if c == nil {
		return
	}
	c.jobsEnqueued.Inc()
}

func (c *Collector) RecordJobProcessed() {
	if c == nil {
		return
	}
	c.jobsProcessed.Inc()
}

func (c *Collector) RecordJobFailed() {
	if c == nil {
		return
	}
	c.jobsFailed.Inc()
}

func (c *Collector) RecordNotificationWrite() {
	if c == nil {
		return
	}
	c.notifications.Inc()
}

// Handler exposes the collected metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records a counter and latency sample for each request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.httpRequests.WithLabelValues(strconv.Itoa(sw.code)).Inc()
		c.httpLatency.Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
