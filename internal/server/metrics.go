package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/picalc/internal/metrics"
)

// Metrics holds the HTTP instruments. They share a registry with the
// integration run recorder so /metrics serves both.
type Metrics struct {
	runs            *metrics.Integration
	activeRequests  prometheus.Gauge
	requestsTotal   prometheus.Counter
	requestDuration prometheus.Histogram
	handler         http.Handler
}

// NewMetrics creates the request instruments on a fresh run recorder.
func NewMetrics() *Metrics {
	return NewMetricsWith(metrics.NewIntegration())
}

// NewMetricsWith registers the request instruments on runs' registry.
func NewMetricsWith(runs *metrics.Integration) *Metrics {
	m := &Metrics{
		runs: runs,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	runs.Registry().MustRegister(m.activeRequests, m.requestsTotal, m.requestDuration)
	m.handler = runs.Handler()
	return m
}

// Runs returns the integration run recorder.
func (m *Metrics) Runs() *metrics.Integration { return m.runs }

func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

func (m *Metrics) observeRequest(d time.Duration) {
	m.requestsTotal.Inc()
	m.requestDuration.Observe(d.Seconds())
}

// WritePrometheus serves the registry.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.IncrementActiveRequests()
		defer func() {
			s.metrics.DecrementActiveRequests()
			s.metrics.observeRequest(time.Since(start))
		}()
		next(w, r)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}
