package config

import (
	"os"
	"strconv"
	"time"

	"statbasket/domain/stats"
	"statbasket/internal"
	"statbasket/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Defaults DefaultsConfig
	Limits   LimitConfig
	Data     DataConfig
	LogLevel internal.LogLevel
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port             string
	MetricsEnabled   bool
	ProfilingEnabled bool
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// DefaultsConfig holds the settings used when a request leaves them out.
type DefaultsConfig struct {
	ConfidenceLevel stats.ConfidenceLevel
	Tail            stats.Tail
	RoundPlaces     int
}

// LimitConfig guards request sizes.
type LimitConfig struct {
	MaxSampleSize int
}

// DataConfig holds data file settings
type DataConfig struct {
	File  string
	Sheet string
}

// TestConfig builds the default test configuration.
func (c *Config) TestConfig() stats.TestConfig {
	return stats.TestConfig{
		Tail:            c.Defaults.Tail,
		ConfidenceLevel: c.Defaults.ConfidenceLevel,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:             getEnvOrDefault("PORT", "8080"),
			MetricsEnabled:   getEnvBoolOrDefault("METRICS_ENABLED", true),
			ProfilingEnabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
			ReadTimeout:      getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getEnvDurationOrDefault("WRITE_TIMEOUT", 30*time.Second),
		},
		Limits: LimitConfig{
			MaxSampleSize: getEnvIntOrDefault("MAX_SAMPLE_SIZE", 1_000_000),
		},
		Data: DataConfig{
			File:  getEnvOrDefault("DATA_FILE", ""),
			Sheet: getEnvOrDefault("DATA_SHEET", ""),
		},
	}

	defaults, err := loadDefaultsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load default test settings")
	}
	config.Defaults = *defaults

	level, err := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDefaultsConfig() (*DefaultsConfig, error) {
	cl, err := stats.ParseConfidenceLevel(getEnvOrDefault("DEFAULT_CONFIDENCE_LEVEL", "0.95"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	tail, err := stats.ParseTail(getEnvOrDefault("DEFAULT_TAIL", "two"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return &DefaultsConfig{
		ConfidenceLevel: cl,
		Tail:            tail,
		RoundPlaces:     getEnvIntOrDefault("ROUND_PLACES", 3),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Defaults.RoundPlaces < 0 || config.Defaults.RoundPlaces > 15 {
		return errors.ConfigInvalid("ROUND_PLACES must be between 0 and 15")
	}
	if config.Limits.MaxSampleSize < 2 {
		return errors.ConfigInvalid("MAX_SAMPLE_SIZE must be at least 2")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
