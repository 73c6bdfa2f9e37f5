package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summarybot_links_detected_total",
		Help: "The total number of YouTube links detected in messages",
	})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarybot_jobs_processed_total",
		Help: "The total number of summary jobs processed",
	}, []string{"status"})

	JobStageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarybot_job_stage_failures_total",
		Help: "Total number of job failures by pipeline stage",
	}, []string{"stage"})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "summarybot_job_duration_seconds",
		Help:    "End-to-end duration of a summary job",
		Buckets: []float64{5, 10, 20, 30, 60, 120, 300, 600},
	})

	DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summarybot_duplicates_skipped_total",
		Help: "Total number of videos skipped because they were already in flight",
	})

	TranscriptsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarybot_transcripts_resolved_total",
		Help: "Total number of transcript resolutions by source",
	}, []string{"source"})

	SummaryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarybot_summary_requests_total",
		Help: "Total number of summarizer requests",
	}, []string{"provider", "model", "status"})

	SummaryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "summarybot_summary_request_duration_seconds",
		Help:    "Duration of summarizer requests",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "model"})

	SummaryFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summarybot_summary_fallbacks_total",
		Help: "Total number of fallbacks from the primary to the paid summarizer",
	})

	PagesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarybot_pages_created_total",
		Help: "Total number of page persistence attempts",
	}, []string{"status"})

	PageBlocksAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summarybot_page_blocks_appended_total",
		Help: "Total number of content blocks appended to pages",
	})

	QueueBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "summarybot_queue_backlog_size",
		Help: "Number of pending jobs in the queue",
	})

	QueueBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "summarybot_queue_batch_duration_seconds",
		Help:    "Duration in seconds to process a queue batch",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
)
