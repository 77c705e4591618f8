// Package metrics exposes Prometheus collectors for the tool pipeline and the
// orchestration engine. Collectors are registered against a caller supplied
// Registerer; nil receivers are valid and record nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "omniagent"

// ToolMetrics instruments the tool execution pipeline.
type ToolMetrics struct {
	Executions  *prometheus.CounterVec
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	InFlight    prometheus.Gauge
	Duration    *prometheus.HistogramVec
}

// NewToolMetrics creates and registers the pipeline collectors.
func NewToolMetrics(reg prometheus.Registerer) *ToolMetrics {
	m := &ToolMetrics{
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_executions_total",
				Help:      "Total number of tool executions by outcome",
			},
			[]string{"tool", "status"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_cache_hits_total",
				Help:      "Tool executions served from the result cache",
			},
			[]string{"tool"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_cache_misses_total",
				Help:      "Tool executions that missed the result cache",
			},
			[]string{"tool"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tool_executions_in_flight",
				Help:      "Tool executions currently holding a concurrency slot",
			},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_execution_duration_seconds",
				Help:      "Tool execution latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Executions, m.CacheHits, m.CacheMisses, m.InFlight, m.Duration)
	}
	return m
}

// ObserveExecution records one finished execution.
func (m *ToolMetrics) ObserveExecution(tool, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.Executions.WithLabelValues(tool, status).Inc()
	m.Duration.WithLabelValues(tool).Observe(dur.Seconds())
}

// CacheHit counts a cache hit for tool.
func (m *ToolMetrics) CacheHit(tool string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(tool).Inc()
}

// CacheMiss counts a cache miss for tool.
func (m *ToolMetrics) CacheMiss(tool string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(tool).Inc()
}

// SlotAcquired increments the in-flight gauge.
func (m *ToolMetrics) SlotAcquired() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// SlotReleased decrements the in-flight gauge.
func (m *ToolMetrics) SlotReleased() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

// OrchestrationMetrics instruments the orchestration and workflow engines.
type OrchestrationMetrics struct {
	Tasks     *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Workflows *prometheus.CounterVec
}

// NewOrchestrationMetrics creates and registers the orchestration collectors.
func NewOrchestrationMetrics(reg prometheus.Registerer) *OrchestrationMetrics {
	m := &OrchestrationMetrics{
		Tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orchestration_tasks_total",
				Help:      "Orchestration tasks by target kind and terminal status",
			},
			[]string{"target", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "orchestration_task_duration_seconds",
				Help:      "Orchestration task latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"target"},
		),
		Workflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_executions_total",
				Help:      "Workflow executions by terminal status",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Tasks, m.Duration, m.Workflows)
	}
	return m
}

// ObserveTask records one finished orchestration task.
func (m *OrchestrationMetrics) ObserveTask(target, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(target, status).Inc()
	m.Duration.WithLabelValues(target).Observe(dur.Seconds())
}

// ObserveWorkflow records one finished workflow execution.
func (m *OrchestrationMetrics) ObserveWorkflow(status string) {
	if m == nil {
		return
	}
	m.Workflows.WithLabelValues(status).Inc()
}
