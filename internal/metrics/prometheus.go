package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "picalc"

// Integration records integration runs. It owns its own registry so tests and
// servers never collide on the global default registry.
type Integration struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	workers  *prometheus.GaugeVec
	started  prometheus.Counter
}

// NewIntegration creates the run instruments plus Go runtime and process
// collectors on a fresh registry.
func NewIntegration() *Integration {
	reg := prometheus.NewRegistry()
	m := &Integration{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Integration runs by strategy and outcome.",
		}, []string{"strategy", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of successful integration runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"strategy"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Worker count granted to the latest run of each strategy.",
		}, []string{"strategy"}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_started_total",
			Help:      "Integration runs recorded, successful or not.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.workers, m.started,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRun observes one completed run.
func (m *Integration) RecordRun(strategy string, workers int, elapsed time.Duration, err error) {
	m.started.Inc()
	if err != nil {
		m.runs.WithLabelValues(strategy, "error").Inc()
		return
	}
	m.runs.WithLabelValues(strategy, "ok").Inc()
	m.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	m.workers.WithLabelValues(strategy).Set(float64(workers))
}

// Registry returns the registry holding the instruments, so callers can add
// their own collectors.
func (m *Integration) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Integration) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RunCount returns the number of recorded runs for a strategy and status,
// read back from the registry.
func (m *Integration) RunCount(strategy string, ok bool) float64 {
	status := "error"
	if ok {
		status = "ok"
	}
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	for _, f := range families {
		if f.GetName() != Namespace+"_runs_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["strategy"] == strategy && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
