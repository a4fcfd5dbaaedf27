// Package metrics exposes Prometheus collectors for report generation and the
// HTTP boundary.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcome labels.
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	reportsGenerated *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	requestCount     *prometheus.CounterVec
	gatherer         prometheus.Gatherer
}

// New registers the collectors on reg. When reg also implements
// prometheus.Gatherer it backs Handler.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reportsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_generated_total",
				Help: "Total number of weighing reports built, by outcome.",
			},
			[]string{"status"},
		),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_build_duration_seconds",
			Help:    "Time spent building one weighing report.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		gatherer: prometheus.DefaultGatherer,
	}

	for _, c := range []prometheus.Collector{m.reportsGenerated, m.buildDuration, m.requestCount} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m, nil
}

// ObserveReport records the outcome and duration of one report build.
func (m *Metrics) ObserveReport(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(status).Inc()
	m.buildDuration.Observe(elapsed.Seconds())
}

// ObserveRequest counts one handled HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler serves the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
