package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "CHASE_PREDICTOR"
	defaultConfigPath = "config/config.yaml"
)

// loadDotEnv loads an optional .env file; variables already set win
func loadDotEnv() error {
	path := os.Getenv(envPrefix + "_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults mirrors config/config.yaml so every key is bound for env overrides
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "chase-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("data.matches", "data/matches.csv")
	v.SetDefault("data.deliveries", "data/deliveries.csv")
	v.SetDefault("data.http.timeout_seconds", 30)
	v.SetDefault("data.http.max_retries", 5)
	v.SetDefault("data.http.rate_limit", 10)
	v.SetDefault("data.http.circuit_breaker_max", 5)

	v.SetDefault("artifacts.output_dir", "artifacts")
	v.SetDefault("artifacts.feature_table", "model_data.csv")
	v.SetDefault("artifacts.catalog", "model_input_template.csv")
	v.SetDefault("artifacts.encoder", "transformer.json")
	v.SetDefault("artifacts.model", "ipl_model.json")
	v.SetDefault("artifacts.manifest", "manifest.yaml")

	v.SetDefault("training.test_fraction", 0.2)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.stratify", true)
	v.SetDefault("training.max_iter", 1000)

	v.SetDefault("predictor.strict_catalog", true)
	v.SetDefault("predictor.cache_ttl_seconds", 300)
	v.SetDefault("predictor.cache_max_size", 1000)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.retrain", "@daily")
	v.SetDefault("schedule.health_port", 8080)
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
