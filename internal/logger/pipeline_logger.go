// Package logger provides training-pipeline logging.
package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for the feature and training pipeline.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// WithRun returns a logger scoped to one pipeline run.
func (pl *PipelineLogger) WithRun(runID uuid.UUID) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("run_id", runID.String())}
}

// LogSourceLoaded logs a raw table being read.
func (pl *PipelineLogger) LogSourceLoaded(table, location string, rows int) {
	pl.WithFields(logrus.Fields{
		"table":    table,
		"location": location,
		"rows":     rows,
	}).Info("Raw table loaded")
}

// LogEligibility logs the outcome of the match eligibility filter.
func (pl *PipelineLogger) LogEligibility(totalMatches, eligibleMatches, chaseDeliveries int) {
	pl.WithFields(logrus.Fields{
		"total_matches":    totalMatches,
		"eligible_matches": eligibleMatches,
		"excluded_matches": totalMatches - eligibleMatches,
		"chase_deliveries": chaseDeliveries,
	}).Info("Match eligibility filter applied")
}

// LogMatchReplay logs one match replay at debug level.
func (pl *PipelineLogger) LogMatchReplay(matchID int64, chasingTeam string, deliveries, target, label int) {
	pl.WithFields(logrus.Fields{
		"match_id":     matchID,
		"chasing_team": chasingTeam,
		"deliveries":   deliveries,
		"target":       target,
		"result":       label,
	}).Debug("Match replayed")
}

// LogDeliveryAnomaly logs a delivery whose over or ball number is out of range.
func (pl *PipelineLogger) LogDeliveryAnomaly(matchID int64, over, ball int, kind string) {
	pl.WithFields(logrus.Fields{
		"match_id": matchID,
		"over":     over,
		"ball":     ball,
		"kind":     kind,
	}).Warn("Delivery outside the 20-over domain, row emitted unchanged")
}

// LogFeatureTable logs the persisted feature table.
func (pl *PipelineLogger) LogFeatureTable(path string, rows, matches int) {
	pl.WithFields(logrus.Fields{
		"path":    path,
		"rows":    rows,
		"matches": matches,
	}).Info("Feature table written")
}

// LogCatalog logs the persisted allowed-values catalog.
func (pl *PipelineLogger) LogCatalog(path string, tuples int) {
	pl.WithFields(logrus.Fields{
		"path":   path,
		"tuples": tuples,
	}).Info("Allowed-values catalog written")
}

// LogModelTraining logs model training events.
func (pl *PipelineLogger) LogModelTraining(modelVersion string, trainingDuration float64, metrics map[string]float64, hyperparameters map[string]interface{}) {
	pl.WithFields(logrus.Fields{
		"model_version":     modelVersion,
		"training_duration": trainingDuration,
		"metrics":           metrics,
		"hyperparameters":   hyperparameters,
	}).Info("Model training completed")
}

// LogRunFailed logs a pipeline stage failure.
func (pl *PipelineLogger) LogRunFailed(stage string, err error) {
	pl.WithError(err).WithField("stage", stage).Error("Pipeline run failed")
}
