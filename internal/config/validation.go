package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("location", validateLocation)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateLocation accepts local paths and file, http or https URLs
func validateLocation(fl validator.FieldLevel) bool {
	location := fl.Field().String()
	if location == "" {
		return false
	}
	if !strings.Contains(location, "://") {
		return true
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "file":
		return u.Path != ""
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// validateCron accepts standard five-field specs and @descriptors
func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Metrics.Enabled && cfg.Schedule.HealthPort != 0 && cfg.Metrics.Port == cfg.Schedule.HealthPort {
		return fmt.Errorf("metrics port and health port must differ, both are %d", cfg.Metrics.Port)
	}
	if cfg.Predictor.CacheTTLSeconds > 0 && cfg.Predictor.CacheMaxSize == 0 {
		return fmt.Errorf("predictor.cache_max_size must be positive when caching is enabled")
	}
	if cfg.Data.Matches == cfg.Data.Deliveries {
		return fmt.Errorf("data.matches and data.deliveries point at the same table: %s", cfg.Data.Matches)
	}
	return nil
}

// formatValidationErrors formats validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	var errMsg string
	for _, err := range errs {
		field := err.Namespace()
		tag := err.Tag()
		value := err.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "gt", "gte", "lt", "lte", "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' with value '%v' violates constraint %s=%s\n", field, value, tag, err.Param())
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "location":
			errMsg += fmt.Sprintf("- Field '%s' must be a file path or an http(s) URL, got '%v'\n", field, value)
		case "cron":
			errMsg += fmt.Sprintf("- Field '%s' is not a valid cron expression: '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() && !cfg.Predictor.StrictCatalog {
		return fmt.Errorf("production environment requires predictor.strict_catalog")
	}
	if cfg.IsProduction() && cfg.App.LogLevel == "debug" {
		return fmt.Errorf("debug logging should be disabled in production")
	}
	return nil
}
