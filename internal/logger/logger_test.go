package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("chatty")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestPipelineLoggerSourceLoaded(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogSourceLoaded("deliveries", "data/deliveries.csv", 179078)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "deliveries", logEntry["table"])
	assert.Equal(t, float64(179078), logEntry["rows"])
}

func TestPipelineLoggerEligibility(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogEligibility(756, 731, 85000)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(25), logEntry["excluded_matches"])
}

func TestPipelineLoggerWithRun(t *testing.T) {
	log, buf := setupTestLogger()
	runID := uuid.New()
	pipelineLogger := NewPipelineLogger(log).WithRun(runID)

	pipelineLogger.LogCatalog("artifacts/model_input_template.csv", 412)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, runID.String(), logEntry["run_id"])
	assert.Equal(t, "pipeline", logEntry["component"])
}

func TestPipelineLoggerAnomalyIsWarning(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogDeliveryAnomaly(42, 21, 1, "beyond_innings")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "beyond_innings", logEntry["kind"])
}

func TestPipelineLoggerModelTraining(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogModelTraining(
		"5f0c9d7e-68b1-5b0e-9a57-2d1f1c3c0a11",
		3.25,
		map[string]float64{"accuracy": 0.79, "log_loss": 0.44},
		map[string]interface{}{"max_iter": 1000, "l2": 1.0},
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "5f0c9d7e-68b1-5b0e-9a57-2d1f1c3c0a11", logEntry["model_version"])
}

func TestPipelineLoggerRunFailed(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogRunFailed("load", errors.New("file missing"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "file missing", logEntry["error"])
	assert.Equal(t, "load", logEntry["stage"])
}

func TestPredictionLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogPrediction("Mumbai Indians", "Chennai Super Kings", 63.5, true, 0.4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "predictor", logEntry["component"])
	assert.Equal(t, true, logEntry["cache_hit"])
	assert.Equal(t, 63.5, logEntry["win_probability"])
}

func TestPredictionLoggerRejected(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogPredictionRejected("balls_left must be between 1 and 120")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
}

func TestNilBaseLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPipelineLogger(nil).LogCatalog("x", 1)
		NewPredictionLogger(nil).LogPredictionRejected("x")
	})
}

func BenchmarkPipelineLoggerMatchReplay(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	pipelineLogger := NewPipelineLogger(log)

	for i := 0; i < b.N; i++ {
		pipelineLogger.LogMatchReplay(335982, "Royal Challengers Bangalore", 120, 165, 0)
	}
}
