package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flowcore/errors"
)

func gatherValue(t *testing.T, registry *MetricsRegistry, name string, labels map[string]string) (float64, bool) {
	t.Helper()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if matchLabels(m, labels) {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue(), true
				}
				if m.GetGauge() != nil {
					return m.GetGauge().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		got[pair.GetName()] = pair.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetricsRegistry_CoreMetrics(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordValidation("runtime", "valid")
	core.RecordValidation("runtime", "valid")
	core.RecordValidation("strict", "invalid")
	core.RecordValidationDuration("runtime", 25*time.Millisecond)
	core.RecordIssue("error", "missing_required")
	core.RecordDiffBatch("applied", 3)

	value, found := gatherValue(t, registry, "flowcore_validation_runs_total",
		map[string]string{"profile": "runtime", "status": "valid"})
	require.True(t, found)
	assert.Equal(t, 2.0, value)

	value, found = gatherValue(t, registry, "flowcore_validation_issues_total",
		map[string]string{"severity": "error", "type": "missing_required"})
	require.True(t, found)
	assert.Equal(t, 1.0, value)

	value, found = gatherValue(t, registry, "flowcore_diff_batches_total",
		map[string]string{"status": "applied"})
	require.True(t, found)
	assert.Equal(t, 1.0, value)
}

func TestMetricsRegistry_RegisterAndUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowcore",
		Subsystem: "test",
		Name:      "events_total",
		Help:      "Test counter",
	})

	require.NoError(t, registry.Register("engine", "events", counter))
	counter.Inc()

	value, found := gatherValue(t, registry, "flowcore_test_events_total", nil)
	require.True(t, found)
	assert.Equal(t, 1.0, value)

	// Same key again is rejected as structural
	err := registry.Register("engine", "events", counter)
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))

	assert.True(t, registry.Unregister("engine", "events"))
	assert.False(t, registry.Unregister("engine", "events"))
}

func TestMetricsRegistry_PrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{Name: "conflict_total", Help: "x"})
	second := prometheus.NewCounter(prometheus.CounterOpts{Name: "conflict_total", Help: "x"})

	require.NoError(t, registry.Register("a", "conflict", first))
	err := registry.Register("b", "conflict", second)
	require.Error(t, err)
	assert.True(t, errors.IsStructural(err))
}
