// Package metrics exposes the Prometheus instruments of the service.
//
// Instruments register with the default registry on import and are served by
// promhttp from the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Corpus Metrics
	CorpusPosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_corpus_posts",
			Help: "Current number of posts in the corpus",
		},
	)

	CorpusPostsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_corpus_posts_added_total",
			Help: "Total number of posts accepted into the corpus",
		},
	)

	CorpusPostsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_corpus_posts_dropped_total",
			Help: "Total number of low-scoring posts dropped by the size cap",
		},
	)

	CorpusPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_corpus_persist_duration_seconds",
			Help:    "Duration of corpus persistence in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CorpusPersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "content_corpus_persist_errors_total",
			Help: "Total number of failed corpus writes",
		},
	)

	// Ingestion Metrics
	IngestionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_ingestion_runs_total",
			Help: "Total number of scraper ingestion runs",
		},
		[]string{"result"},
	)

	IngestionRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_ingestion_records_total",
			Help: "Total number of scraper records processed",
		},
		[]string{"outcome"}, // "ingested", "skipped", "duplicate"
	)

	IngestionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_ingestion_last_success_timestamp",
			Help: "Unix timestamp of the last successful ingestion run",
		},
	)

	// Engine Metrics
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_predictions_total",
			Help: "Total number of viral-probability predictions",
		},
		[]string{"niche"},
	)

	CandidatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_candidates_generated_total",
			Help: "Total number of generated candidates",
		},
		[]string{"source"}, // "template", "hook", "variation"
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_training_runs_total",
			Help: "Total number of model retraining runs",
		},
		[]string{"result"},
	)

	TemplateLibrarySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_template_library_size",
			Help: "Current number of templates in the generator library",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCorpusMutation records the outcome of one AddPosts call
func RecordCorpusMutation(size, added, dropped int) {
	CorpusPosts.Set(float64(size))
	CorpusPostsAdded.Add(float64(added))
	CorpusPostsDropped.Add(float64(dropped))
}

// RecordPersist records a corpus write
func RecordPersist(duration time.Duration, err error) {
	CorpusPersistDuration.Observe(duration.Seconds())
	if err != nil {
		CorpusPersistErrors.Inc()
	}
}

// RecordIngestion records a scraper run
func RecordIngestion(ingested, skipped, duplicates int, err error) {
	if err != nil {
		IngestionRuns.WithLabelValues("failure").Inc()
		return
	}
	IngestionRuns.WithLabelValues("success").Inc()
	IngestionRecords.WithLabelValues("ingested").Add(float64(ingested))
	IngestionRecords.WithLabelValues("skipped").Add(float64(skipped))
	IngestionRecords.WithLabelValues("duplicate").Add(float64(duplicates))
	IngestionLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordTraining records a retraining run
func RecordTraining(librarySize int, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("failure").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	TemplateLibrarySize.Set(float64(librarySize))
}
