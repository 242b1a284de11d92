// Package config provides configuration management for the chase predictor.
package config

import (
	"path/filepath"
	"time"

	"github.com/yourusername/chase-predictor/internal/datasource"
	"github.com/yourusername/chase-predictor/internal/model"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" validate:"required"`
	Training  TrainingConfig  `mapstructure:"training" validate:"required"`
	Predictor PredictorConfig `mapstructure:"predictor" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates the raw match and delivery tables
type DataConfig struct {
	Matches    string           `mapstructure:"matches" validate:"required,location"`
	Deliveries string           `mapstructure:"deliveries" validate:"required,location"`
	HTTP       HTTPClientConfig `mapstructure:"http"`
}

// HTTPClientConfig tunes downloads of remote tables
type HTTPClientConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
}

// ArtifactsConfig names the files the pipeline writes and the predictor reads
type ArtifactsConfig struct {
	OutputDir    string `mapstructure:"output_dir" validate:"required"`
	FeatureTable string `mapstructure:"feature_table" validate:"required"`
	Catalog      string `mapstructure:"catalog" validate:"required"`
	Encoder      string `mapstructure:"encoder" validate:"required"`
	Model        string `mapstructure:"model" validate:"required"`
	Manifest     string `mapstructure:"manifest" validate:"required"`
}

// TrainingConfig controls the holdout split and the classifier fit
type TrainingConfig struct {
	TestFraction float64 `mapstructure:"test_fraction" validate:"gt=0,lt=1"`
	Seed         int64   `mapstructure:"seed"`
	Stratify     bool    `mapstructure:"stratify"`
	MaxIter      int     `mapstructure:"max_iter" validate:"gte=0"`
	LearningRate float64 `mapstructure:"learning_rate" validate:"gte=0"`
	L2           float64 `mapstructure:"l2" validate:"gte=0"`
	Tolerance    float64 `mapstructure:"tolerance" validate:"gte=0"`
}

// PredictorConfig controls the interactive predictor
type PredictorConfig struct {
	StrictCatalog   bool `mapstructure:"strict_catalog"`
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int  `mapstructure:"cache_max_size" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
	Port         int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path         string `mapstructure:"path"`
}

// ScheduleConfig represents scheduled retraining
type ScheduleConfig struct {
	Retrain    string `mapstructure:"retrain" validate:"omitempty,cron"`
	HealthPort int    `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ArtifactPath joins an artifact file name onto the output directory
func (c *Config) ArtifactPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Artifacts.OutputDir, name)
}

// TrainingOptions converts the training section for the model package.
// Zero values are filled from the model defaults.
func (c *Config) TrainingOptions() model.TrainingOptions {
	return model.TrainingOptions{
		MaxIter:      c.Training.MaxIter,
		LearningRate: c.Training.LearningRate,
		L2:           c.Training.L2,
		Tolerance:    c.Training.Tolerance,
	}
}

// HTTPClient converts the data.http section for the datasource package.
// Zero values are filled from the datasource defaults.
func (c *Config) HTTPClient() datasource.HTTPClientConfig {
	return datasource.HTTPClientConfig{
		Timeout:           time.Duration(c.Data.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:        c.Data.HTTP.MaxRetries,
		RateLimit:         c.Data.HTTP.RateLimit,
		CircuitBreakerMax: c.Data.HTTP.CircuitBreakerMax,
	}
}

// CacheTTL returns the prediction cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Predictor.CacheTTLSeconds) * time.Second
}
