// Package metrics exports job run counters and durations to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/oddjob/internal/job"
)

const namespace = "oddjob"

// Metrics is a job.Observer backed by a dedicated Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	running  *prometheus.GaugeVec
}

var _ job.Observer = (*Metrics)(nil)

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Finished job runs by outcome.",
		}, []string{"job", "outcome", "firing"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of finished job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10),
		}, []string{"job", "firing"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Job runs currently in progress.",
		}, []string{"job"}),
	}
	m.registry.MustRegister(
		m.runs, m.duration, m.running,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// JobStarted implements job.Observer.
func (m *Metrics) JobStarted(e job.Event) {
	m.running.WithLabelValues(e.Job).Inc()
}

// JobFinished implements job.Observer.
func (m *Metrics) JobFinished(e job.Event) {
	firing := strconv.FormatBool(e.Firing)
	m.running.WithLabelValues(e.Job).Dec()
	m.runs.WithLabelValues(e.Job, string(e.Outcome), firing).Inc()
	m.duration.WithLabelValues(e.Job, firing).Observe(e.Duration().Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
