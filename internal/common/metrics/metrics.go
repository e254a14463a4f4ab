// internal/common/metrics/metrics.go
package metrics

import (
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

	LoanDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decisions_total",
			Help: "Loan decisions by verdict and origin (http, worker, cli)",
		},
		[]string{"verdict", "origin"},
	)

	LoanDecisionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decision_errors_total",
			Help: "Loan decisions that failed, by error code",
		},
		[]string{"error_code"},
	)

	VerdictCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_verdict_cache_lookups_total",
			Help: "Verdict cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ArtifactsLoadedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_artifacts_loaded_timestamp_seconds",
			Help: "Unix time the model artifacts were loaded",
		},
	)
)

// TrackJob marks a job active and returns a func that records its outcome.
// errorCode is empty on success.
func TrackJob(taskType string) func(errorCode string) {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	timer := prometheus.NewTimer(WorkerJobDuration.WithLabelValues(taskType))
	return func(errorCode string) {
		timer.ObserveDuration()
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			return
		}
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
}
