// Package metrics provides the centralized Prometheus registry for the pipeline and predictor.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chase_predictor"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Pipeline metrics
		registry.MustRegister(MatchesLoadedTotal)
		registry.MustRegister(MatchesEligibleTotal)
		registry.MustRegister(DeliveriesReplayedTotal)
		registry.MustRegister(FeatureRowsTotal)
		registry.MustRegister(DeliveryAnomaliesTotal)
		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(PipelineDuration)
		registry.MustRegister(ModelHoldoutAccuracy)
		registry.MustRegister(ModelHoldoutLogLoss)

		// Predictor metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionCacheHitsTotal)
		registry.MustRegister(PredictionLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in text exposition format, for batch runs
// picked up by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
