package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Gemini API settings
	GeminiAPIKey string `json:"-"` // Don't expose in JSON
	GeminiModel  string `json:"gemini_model"`

	// Cache settings
	CacheType     string `json:"cache_type"`     // "memory" or "cloud-storage"
	CacheDuration int    `json:"cache_duration"` // in hours
	CacheBucket   string `json:"cache_bucket"`   // cloud-storage only

	// Tip warmup settings
	TipWarmupSchedule string `json:"tip_warmup_schedule"` // cron spec, empty disables
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Host:              getEnvOrDefault("HOST", "0.0.0.0"),
		GeminiAPIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash-preview-09-2025"),
		CacheType:         getEnvOrDefault("CACHE_TYPE", "memory"),
		CacheDuration:     getEnvOrDefaultInt("CACHE_DURATION_HOURS", 24),
		CacheBucket:       getEnvOrDefault("CACHE_BUCKET", ""),
		TipWarmupSchedule: getEnvOrDefault("TIP_WARMUP_SCHEDULE", ""),
	}

	return config, config.validate()
}

// validate checks that configuration values are consistent. The Gemini API
// key is deliberately not required here: its absence degrades to an in-page
// error message instead of preventing startup.
func (c *Config) validate() error {
	switch c.CacheType {
	case "memory":
	case "cloud-storage":
		if c.CacheBucket == "" {
			return &ConfigError{Field: "CACHE_BUCKET", Message: "required when CACHE_TYPE is cloud-storage"}
		}
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: "must be memory or cloud-storage"}
	}

	if c.CacheDuration <= 0 {
		return &ConfigError{Field: "CACHE_DURATION_HOURS", Message: "must be positive"}
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
