// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	InsightSectionsMissing = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_sections_missing_total",
			Help: "Narratives parsed without a given section marker",
		},
		[]string{"section"},
	)

	PredictionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_cache_lookups_total",
			Help: "Prediction cache lookups by result",
		},
		[]string{"result"},
	)
)

// JobTimer tracks one job from start to completion or failure.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active and starts its timer.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Complete records a successful job.
func (t *JobTimer) Complete() time.Duration {
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
	return t.finish()
}

// Fail records a failed job under errorCode.
func (t *JobTimer) Fail(errorCode string) time.Duration {
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
	return t.finish()
}

func (t *JobTimer) finish() time.Duration {
	elapsed := time.Since(t.start)
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(elapsed.Seconds())
	return elapsed
}
