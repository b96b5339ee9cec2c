// Package metrics holds the prometheus collectors for the engine and its
// hosts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for mutation counts.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeUnchanged = "unchanged"
)

type Metrics struct {
	Mutations           *prometheus.CounterVec
	RecomputeDuration   prometheus.Histogram
	RecomputeTasks      prometheus.Histogram
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wbs_mutations_total",
				Help: "Project mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RecomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wbs_recompute_duration_seconds",
			Help:    "Time spent recomputing a task forest",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		}),
		RecomputeTasks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wbs_recompute_tasks",
			Help:    "Number of tasks in a recomputed forest",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		}),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordMutation counts one mutation. Safe on a nil receiver.
func (m *Metrics) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, outcome).Inc()
}

// RecordRecompute observes one pipeline run over n tasks.
func (m *Metrics) RecordRecompute(n int, d time.Duration) {
	if m == nil {
		return
	}
	m.RecomputeDuration.Observe(d.Seconds())
	m.RecomputeTasks.Observe(float64(n))
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
