package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAICall("chat", time.Second, nil)
		m.ObserveIngestion(1, 2)
		m.SetTasksStored(3)
	})
}

func TestObserveAICall(t *testing.T) {
	m := New()

	m.ObserveAICall("review", 200*time.Millisecond, nil)
	m.ObserveAICall("review", time.Second, errors.New("boom"))
	m.ObserveAICall("news", time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("review", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("review", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCallsTotal.WithLabelValues("news", "success")))
}

func TestObserveIngestionAndGauge(t *testing.T) {
	m := New()

	m.ObserveIngestion(3, 1)
	m.ObserveIngestion(2, 0)
	m.SetTasksStored(7)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.ingestedTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestedTotal.WithLabelValues("rejected")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.tasksStored))
}
