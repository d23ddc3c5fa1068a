package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Retrieval metrics
	RetrievalRequests *prometheus.CounterVec
	RetrievalLatency  prometheus.Histogram
	RetrievalMatches  prometheus.Histogram

	// Intent metrics
	IntentDetections *prometheus.CounterVec

	// Suggestion metrics
	SuggestionFetches   prometheus.Counter
	SuggestionCacheHits prometheus.Counter
	SuggestionThrottled prometheus.Counter

	// Maintenance metrics
	MaintenanceRuns       prometheus.Counter
	MaintenanceDuplicates prometheus.Counter
	MaintenanceEnriched   prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		RetrievalRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kontext_retrieval_requests_total",
			Help: "Total number of context retrieval requests by mode",
		}, []string{"mode"}),

		RetrievalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kontext_retrieval_duration_seconds",
			Help:    "Context retrieval latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		RetrievalMatches: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kontext_retrieval_matches",
			Help:    "Number of matches per retrieval request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		IntentDetections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kontext_intent_detections_total",
			Help: "Total number of intent detections by intent name",
		}, []string{"intent"}),

		SuggestionFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_suggestion_fetches_total",
			Help: "Total number of live suggestion fetches executed",
		}),

		SuggestionCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_suggestion_cache_hits_total",
			Help: "Total number of suggestion requests served from cache",
		}),

		SuggestionThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_suggestion_throttled_total",
			Help: "Total number of suggestion requests rejected by the rate limiter",
		}),

		MaintenanceRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_maintenance_runs_total",
			Help: "Total number of maintenance passes executed",
		}),

		MaintenanceDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_maintenance_duplicates_removed_total",
			Help: "Total number of duplicate entries removed by maintenance",
		}),

		MaintenanceEnriched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kontext_maintenance_entries_enriched_total",
			Help: "Total number of entries enriched with resolved dates",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordRetrieval records one context retrieval request
func (m *Metrics) RecordRetrieval(mode string, seconds float64, matches int) {
	m.RetrievalRequests.WithLabelValues(mode).Inc()
	m.RetrievalLatency.Observe(seconds)
	m.RetrievalMatches.Observe(float64(matches))
}

// RecordIntent records a detected intent
func (m *Metrics) RecordIntent(intent string) {
	m.IntentDetections.WithLabelValues(intent).Inc()
}
