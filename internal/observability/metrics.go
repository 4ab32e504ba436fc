// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	SignalsDetected  prometheus.Counter
	SamplesAnalyzed  prometheus.Counter

	// Classification metrics
	ClassificationsTotal *prometheus.CounterVec
	ClassifierFallbacks  prometheus.Counter
	ClassifierLatency    prometheus.Histogram

	// Storage metrics
	ObjectsStored    prometheus.Counter
	DuplicatesGated  prometheus.Counter
	StoreErrors      *prometheus.CounterVec
	ArchiveBatches   prometheus.Counter

	// Catalog metrics
	CatalogLookups *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "exoplanet_lab"
	}

	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis pipeline duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		SignalsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "signals_detected_total",
			Help:      "Total number of transit signals detected",
		}),
		SamplesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "samples_analyzed_total",
			Help:      "Total number of light-curve samples analyzed",
		}),

		ClassificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "classifications_total",
			Help:      "Total number of classifications by label",
		}, []string{"label"}),
		ClassifierFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "fallbacks_total",
			Help:      "Total number of rule-based fallbacks after model service failures",
		}),
		ClassifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "service_latency_seconds",
			Help:      "Model service call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ObjectsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "objects_stored_total",
			Help:      "Total number of discovered objects persisted",
		}),
		DuplicatesGated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "duplicates_gated_total",
			Help:      "Total number of detections rejected by the deduplication gate",
		}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage errors by operation",
		}, []string{"operation"}),
		ArchiveBatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "archive_batches_total",
			Help:      "Total number of light-curve batches archived",
		}),

		CatalogLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "lookups_total",
			Help:      "Total number of host catalog lookups by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAnalysis records one completed pipeline run.
func RecordAnalysis(status string, durationSeconds float64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordSignals adds to the detected-signal counter.
func RecordSignals(n int) {
	DefaultMetrics.SignalsDetected.Add(float64(n))
}

// RecordSamples adds to the analyzed-sample counter.
func RecordSamples(n int) {
	DefaultMetrics.SamplesAnalyzed.Add(float64(n))
}

// RecordClassification increments the per-label classification counter.
func RecordClassification(label string) {
	DefaultMetrics.ClassificationsTotal.WithLabelValues(label).Inc()
}

// RecordClassifierFallback increments the fallback counter.
func RecordClassifierFallback() {
	DefaultMetrics.ClassifierFallbacks.Inc()
}

// RecordClassifierLatency observes one model service call duration.
func RecordClassifierLatency(seconds float64) {
	DefaultMetrics.ClassifierLatency.Observe(seconds)
}

// RecordObjectStored increments the persisted-object counter.
func RecordObjectStored() {
	DefaultMetrics.ObjectsStored.Inc()
}

// RecordDuplicateGated increments the dedup-rejection counter.
func RecordDuplicateGated() {
	DefaultMetrics.DuplicatesGated.Inc()
}

// RecordStoreError increments the storage error counter for an operation.
func RecordStoreError(operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(operation).Inc()
}

// RecordArchiveBatch increments the archive batch counter.
func RecordArchiveBatch() {
	DefaultMetrics.ArchiveBatches.Inc()
}

// RecordCatalogLookup increments the catalog lookup counter for an outcome.
func RecordCatalogLookup(outcome string) {
	DefaultMetrics.CatalogLookups.WithLabelValues(outcome).Inc()
}
