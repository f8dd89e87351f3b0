package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the batch pipeline. All Record*
// methods are safe to call on a nil receiver.
type Metrics struct {
	registry       *prometheus.Registry
	ReposProcessed *prometheus.CounterVec
	AnalysisTime   *prometheus.HistogramVec
	TurnsPerRun    prometheus.Histogram
	ToolCalls      *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with pipeline collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	repos := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repolens_repos_processed_total",
		Help: "Repositories processed by outcome",
	}, []string{"outcome"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "repolens_analysis_duration_seconds",
		Help:    "Per-repository analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"outcome"})

	turns := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "repolens_turns_per_analysis",
		Help:    "Model turns consumed per analysis",
		Buckets: prometheus.LinearBuckets(1, 1, 6),
	})

	toolCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "repolens_tool_calls_total",
		Help: "Tool invocations by tool name and result status",
	}, []string{"tool", "status"})

	reg.MustRegister(repos, durs, turns, toolCalls)

	return &Metrics{
		registry:       reg,
		ReposProcessed: repos,
		AnalysisTime:   durs,
		TurnsPerRun:    turns,
		ToolCalls:      toolCalls,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRepo records one finished repository with its duration.
func (m *Metrics) RecordRepo(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.ReposProcessed.WithLabelValues(outcome).Inc()
	m.AnalysisTime.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordTurns records the turns consumed by one analysis.
func (m *Metrics) RecordTurns(turns int) {
	if m == nil {
		return
	}
	m.TurnsPerRun.Observe(float64(turns))
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	if tool == "" {
		tool = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}
