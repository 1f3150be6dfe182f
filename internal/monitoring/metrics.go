// Package monitoring exposes Prometheus metrics for the agent
// backend: task lifecycle outcomes, security decisions, model calls,
// and the HTTP surface.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Task metrics
	TasksSubmitted *prometheus.CounterVec
	TasksBlocked   *prometheus.CounterVec
	TasksRunning   prometheus.Gauge
	TaskDuration   prometheus.Histogram

	// Model metrics
	ModelCalls    *prometheus.CounterVec
	ModelDuration prometheus.Histogram

	// Session metrics
	SessionsActive prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		TasksSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_tasks_submitted_total",
				Help: "Total task submissions by outcome",
			},
			[]string{"outcome"},
		),
		TasksBlocked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_tasks_blocked_total",
				Help: "Submissions blocked by the classifier, by category",
			},
			[]string{"category"},
		),
		TasksRunning: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agent_tasks_running",
				Help: "Number of tasks currently executing",
			},
		),
		TaskDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agent_task_duration_seconds",
				Help:    "Task execution duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		ModelCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_model_calls_total",
				Help: "Total model invocations by status",
			},
			[]string{"status"},
		),
		ModelDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agent_model_call_duration_seconds",
				Help:    "Model invocation duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agent_sessions_active",
				Help: "Number of active browser sessions",
			},
		),
	}
}

// RecordSubmission records a submission outcome
// (accepted, blocked, invalid).
func (m *Metrics) RecordSubmission(outcome string) {
	m.TasksSubmitted.WithLabelValues(outcome).Inc()
}

// RecordBlocked records a classifier rejection.
func (m *Metrics) RecordBlocked(category string) {
	m.TasksBlocked.WithLabelValues(category).Inc()
}

// RecordTaskDone records a finished execution.
func (m *Metrics) RecordTaskDone(duration time.Duration) {
	m.TaskDuration.Observe(duration.Seconds())
}

// RecordModelCall records one model invocation.
func (m *Metrics) RecordModelCall(status string, duration time.Duration) {
	m.ModelCalls.WithLabelValues(status).Inc()
	m.ModelDuration.Observe(duration.Seconds())
}
