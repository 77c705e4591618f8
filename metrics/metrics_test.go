package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewToolMetrics(reg)

	m.ObserveExecution("echo", "completed", 10*time.Millisecond)
	m.ObserveExecution("echo", "failed", time.Millisecond)
	m.CacheHit("echo")
	m.CacheMiss("echo")
	m.CacheMiss("echo")
	m.SlotAcquired()
	m.SlotAcquired()
	m.SlotReleased()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("echo", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("echo", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("echo")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues("echo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))

	count, err := testutil.GatherAndCount(reg, "omniagent_tool_execution_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOrchestrationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrchestrationMetrics(reg)

	m.ObserveTask("local_llm", "completed", time.Millisecond)
	m.ObserveWorkflow("failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tasks.WithLabelValues("local_llm", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Workflows.WithLabelValues("failed")))
}

func TestNilMetrics(t *testing.T) {
	var tm *ToolMetrics
	var om *OrchestrationMetrics
	assert.NotPanics(t, func() {
		tm.ObserveExecution("x", "completed", 0)
		tm.CacheHit("x")
		tm.CacheMiss("x")
		tm.SlotAcquired()
		tm.SlotReleased()
		om.ObserveTask("x", "failed", 0)
		om.ObserveWorkflow("completed")
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewToolMetrics(reg)
	assert.Panics(t, func() { NewToolMetrics(reg) })
}
