package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Task subsystem metrics
var (
	// TaskRunsTotal counts task executions by task name and status
	TaskRunsTotal *prometheus.CounterVec

	// TaskDuration tracks how long individual task executions take
	TaskDuration prometheus.Histogram

	// PathsRemovedTotal counts removal attempts made by clean tasks
	PathsRemovedTotal prometheus.Counter

	// RemovalsSkippedTotal counts removal targets blocked by the safety validator
	RemovalsSkippedTotal prometheus.Counter

	// ErrorsTotal counts runtime errors across all subsystems
	ErrorsTotal prometheus.Counter

	// LastRunTimestamp records the Unix timestamp of the last task run
	LastRunTimestamp prometheus.Gauge
)

func initTaskMetrics() {
	TaskRunsTotal = NewCounterVec(
		"devtask_runs_total",
		"Total number of task executions by task and status.",
		[]string{"task", "status"},
	)

	TaskDuration = NewDurationHistogram(
		"devtask_run_duration_seconds",
		"Duration of individual task executions in seconds.",
	)

	PathsRemovedTotal = NewCounter(
		"devtask_paths_removed_total",
		"Total number of removal attempts made by clean tasks.",
	)

	RemovalsSkippedTotal = NewCounter(
		"devtask_removals_skipped_total",
		"Total number of removal targets blocked by the safety validator.",
	)

	ErrorsTotal = NewCounter(
		"devtask_errors_total",
		"Total number of errors encountered by devtask.",
	)

	LastRunTimestamp = NewGauge(
		"devtask_last_run_timestamp",
		"Timestamp of the last task run (Unix epoch seconds).",
	)
}

func registerTaskMetrics() {
	prometheus.MustRegister(TaskRunsTotal)
	prometheus.MustRegister(TaskDuration)
	prometheus.MustRegister(PathsRemovedTotal)
	prometheus.MustRegister(RemovalsSkippedTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(LastRunTimestamp)
}

// RecordTaskRun counts one task execution and updates the last-run stamp.
func RecordTaskRun(task, status string, duration time.Duration) {
	TaskRunsTotal.WithLabelValues(task, status).Inc()
	TaskDuration.Observe(duration.Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}
