package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValues flattens a gathered counter family into outcome -> value.
func counterValues(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			var outcome string
			for _, l := range metric.GetLabel() {
				if l.GetName() == "outcome" {
					outcome = l.GetValue()
				}
			}
			out[outcome] += metric.GetCounter().GetValue()
		}
	}
	return out
}

func TestRecordMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordMutation("task.move", OutcomeRejected)
	m.RecordMutation("task.move", OutcomeRejected)
	m.RecordMutation("task.move", OutcomeCommitted)

	assert.Equal(t, map[string]float64{OutcomeRejected: 2, OutcomeCommitted: 1},
		counterValues(t, reg, "wbs_mutations_total"))
}

func TestRecordRecompute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordRecompute(12, 3*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]uint64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if h := metric.GetHistogram(); h != nil {
				counts[f.GetName()] += h.GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(1), counts["wbs_recompute_duration_seconds"])
	assert.Equal(t, uint64(1), counts["wbs_recompute_tasks"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordMutation("x", OutcomeFailed)
		m.RecordRecompute(1, time.Second)
		m.RecordHTTPRequest("GET", "/", "200", time.Second)
	})
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
