package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Import metrics
	ImportRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_import_rows_total",
			Help: "Rows processed by bulk import and sync, by kind and outcome (success, skipped, error)",
		},
		[]string{"kind", "outcome"},
	)

	ImportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthdesk_import_duration_seconds",
			Help:    "Time taken to process one import batch",
			Buckets: []float64{.05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_emails_sent_total",
			Help: "Transactional emails by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	DataUnavailableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wealthdesk_data_unavailable_total",
			Help: "Requests answered with 503 because the store failed",
		},
	)

	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthdesk_auth_failures_total",
			Help: "Rejected requests by reason (unauthenticated, forbidden)",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ImportRowsTotal,
		ImportDuration,
		EmailsSentTotal,
		DataUnavailableTotal,
		AuthFailuresTotal,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer observes elapsed time into a histogram.
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer starts a timer for the given observer.
func NewTimer(o prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), observer: o}
}

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(d.Seconds())
	}
	return d
}

// ImportOutcome increments the row counter for one import outcome.
func ImportOutcome(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	ImportRowsTotal.WithLabelValues(kind, outcome).Add(float64(n))
}
