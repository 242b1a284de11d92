// Package logger provides predictor logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for live predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictor"),
	}
}

// LogPrediction logs a completed prediction.
func (pl *PredictionLogger) LogPrediction(battingTeam, bowlingTeam string, winProbability float64, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"batting_team":    battingTeam,
		"bowling_team":    bowlingTeam,
		"win_probability": winProbability,
		"cache_hit":       cacheHit,
		"latency_ms":      latencyMs,
	}).Info("Win probability predicted")
}

// LogUnknownCategories logs categories the encoder had no column for.
func (pl *PredictionLogger) LogUnknownCategories(columns []string) {
	pl.WithField("columns", columns).Warn("Prediction used unknown categories")
}

// LogPredictionRejected logs an input refused before reaching the model.
func (pl *PredictionLogger) LogPredictionRejected(reason string) {
	pl.WithField("reason", reason).Warn("Prediction input rejected")
}

// LogArtifactsLoaded logs the artifacts backing a predictor.
func (pl *PredictionLogger) LogArtifactsLoaded(modelVersion string, catalogTuples, featureCount int) {
	pl.WithFields(logrus.Fields{
		"model_version":  modelVersion,
		"catalog_tuples": catalogTuples,
		"feature_count":  featureCount,
	}).Info("Predictor artifacts loaded")
}
