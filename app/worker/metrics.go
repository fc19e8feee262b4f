package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Jobs finished by this worker partitioned by job type and final status
	jobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_processed_total",
			Help: "Total number of generation jobs handled by the worker",
		},
		[]string{"job_type", "status"},
	)

	// Wall time of one job including the model call and the final write
	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_job_duration_seconds",
			Help:    "Generation job latencies in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 270, 300},
		},
		[]string{"job_type"},
	)

	// Failed jobs partitioned by cause (upstream, parse, time_limit, internal)
	jobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_job_failures_total",
			Help: "Generation jobs failed by this worker",
		},
		[]string{"job_type", "cause"},
	)

	jobTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_total",
			Help: "Tokens consumed by the text generation model",
		},
		[]string{"job_type"},
	)

	jobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "generation_jobs_inflight",
			Help: "Number of generation jobs currently executing",
		},
	)

	// Jobs repaired by the reconciler partitioned by action (timed_out, redispatched)
	reconciledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_jobs_reconciled_total",
			Help: "Jobs timed out or re-dispatched by the reconciler",
		},
		[]string{"action"},
	)

	rateLimitWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the outbound model rate limiter",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// outcomeLabel is the status label recorded for a processed job
func outcomeLabel(status string, discarded, skipped bool) string {
	switch {
	case skipped:
		return "skipped"
	case discarded:
		return "discarded"
	default:
		return status
	}
}
