package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline counters
var (
	MatchesLoadedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_loaded_total",
		Help:      "Total number of match records read from the raw tables",
	})
	MatchesEligibleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_eligible_total",
		Help:      "Total number of matches retained by the eligibility filter",
	})
	DeliveriesReplayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_replayed_total",
		Help:      "Total number of second-innings deliveries replayed",
	})
	FeatureRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feature_rows_total",
		Help:      "Total number of feature rows emitted",
	})
	DeliveryAnomaliesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_anomalies_total",
		Help:      "Deliveries with out-of-range over or ball numbers, by kind",
	}, []string{"kind"})
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs by mode and status",
	}, []string{"mode", "status"})
)

// Pipeline histograms and gauges
var (
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of pipeline runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
	ModelHoldoutAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_holdout_accuracy",
		Help:      "Accuracy of the latest fitted model on the held-out split",
	})
	ModelHoldoutLogLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_holdout_log_loss",
		Help:      "Log-loss of the latest fitted model on the held-out split",
	})
)

// RecordLoad records the raw match count and how many survived the filter.
func RecordLoad(matches, eligible int) {
	MatchesLoadedTotal.Add(float64(matches))
	MatchesEligibleTotal.Add(float64(eligible))
}

// RecordReplay records a replayed match.
func RecordReplay(deliveries, rows int) {
	DeliveriesReplayedTotal.Add(float64(deliveries))
	FeatureRowsTotal.Add(float64(rows))
}

// RecordDeliveryAnomaly records a delivery outside the innings domain.
// kind should be one of: "over_below_one", "ball_below_one", "beyond_innings"
func RecordDeliveryAnomaly(kind string) {
	DeliveryAnomaliesTotal.WithLabelValues(kind).Inc()
}

// RecordPipelineRun records a pipeline run outcome.
// mode should be one of: "train", "features"; status one of: "success", "failure"
func RecordPipelineRun(mode, status string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(mode, status).Inc()
	PipelineDuration.Observe(durationSeconds)
}

// UpdateHoldoutMetrics sets the held-out evaluation gauges.
func UpdateHoldoutMetrics(accuracy, logLoss float64) {
	ModelHoldoutAccuracy.Set(accuracy)
	ModelHoldoutLogLoss.Set(logLoss)
}
