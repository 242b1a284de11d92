package metrics

import "github.com/prometheus/client_golang/prometheus"

// Predictor metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of prediction requests by status",
	}, []string{"status"})
	PredictionCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_cache_hits_total",
		Help:      "Total number of predictions served from the cache",
	})
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of prediction requests in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})
)

// RecordPrediction records a prediction outcome.
// status should be one of: "success", "rejected", "out_of_catalog", "unknown_category"
func RecordPrediction(status string, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(status).Inc()
	PredictionLatency.Observe(durationSeconds)
}

// RecordPredictionCacheHit records a cached prediction.
func RecordPredictionCacheHit() {
	PredictionCacheHitsTotal.Inc()
}
