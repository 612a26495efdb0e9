package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// PostsCollectedTotal counts posts returned by each collector.
	PostsCollectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "collector",
		Name:      "posts_collected_total",
		Help:      "Total number of keyword-matching posts returned by a collector, labeled by platform.",
	}, []string{"platform"})

	// SourceErrorsTotal counts collector failures, including recovered panics.
	SourceErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "collector",
		Name:      "source_errors_total",
		Help:      "Total number of collector runs that returned an error, labeled by platform.",
	}, []string{"platform"})

	// PostsSavedTotal counts post upserts by outcome.
	PostsSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "store",
		Name:      "posts_saved_total",
		Help:      "Total number of posts written to the store, labeled by result (inserted or skipped).",
	}, []string{"result"})

	// PipelineRunsTotal counts pipeline runs by outcome.
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs, labeled by result (ok, partial, failed).",
	}, []string{"result"})

	// StageErrorsTotal counts stage-scoped pipeline errors.
	StageErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "pipeline",
		Name:      "stage_errors_total",
		Help:      "Total number of errors recorded by a pipeline stage.",
	}, []string{"stage"})

	// PipelineDurationSeconds is the end-to-end time of a pipeline run.
	PipelineDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "social_listener",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "End-to-end duration of a pipeline run.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
	})

	// AnalysisDurationSeconds is the time spent waiting on the language model.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "social_listener",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Time spent generating and parsing one model response, labeled by kind and result.",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 60, 120, 300},
	}, []string{"kind", "result"})

	// AlertsGeneratedTotal counts persisted alerts by severity.
	AlertsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "pipeline",
		Name:      "alerts_generated_total",
		Help:      "Total number of alerts persisted by the pipeline, labeled by severity.",
	}, []string{"severity"})

	// DigestsGeneratedTotal counts generated digests by type.
	DigestsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "social_listener",
		Subsystem: "digest",
		Name:      "generated_total",
		Help:      "Total number of digests generated, labeled by type and result.",
	}, []string{"type", "result"})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			PostsCollectedTotal,
			SourceErrorsTotal,
			PostsSavedTotal,
			PipelineRunsTotal,
			StageErrorsTotal,
			PipelineDurationSeconds,
			AnalysisDurationSeconds,
			AlertsGeneratedTotal,
			DigestsGeneratedTotal,
		)
	})
}
