package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	var metric dto.Metric
	require.NoError(t, vec.WithLabelValues(labels...).Write(&metric))

	return metric.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Action("move", "ok")
	m.Action("move", "ok")
	m.Action("move", "not_your_turn")
	m.StoreConflict("join")
	m.Notification(ResultDropped)

	assert.InDelta(t, 2, counterValue(t, m.actions, "move", "ok"), 0)
	assert.InDelta(t, 1, counterValue(t, m.actions, "move", "not_your_turn"), 0)
	assert.InDelta(t, 1, counterValue(t, m.conflicts, "join"), 0)
	assert.InDelta(t, 1, counterValue(t, m.notifications, ResultDropped), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}
