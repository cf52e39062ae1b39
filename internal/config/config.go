package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Backend API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Exchange rate service
	RatesBaseURL string
	RatesTTL     time.Duration

	// Local snapshot cache
	SnapshotDBPath string

	// Presentation
	ViewportHeight int
	PageSizeMin    int
	PageSizeMax    int

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:5000/api"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		RatesBaseURL: getEnv("RATES_BASE_URL", "https://api.frankfurter.app"),
		RatesTTL:     getEnvDuration("RATES_TTL", 10*time.Minute),

		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "./data/trirule.db"),

		ViewportHeight: getEnvInt("VIEWPORT_HEIGHT", 1030),
		PageSizeMin:    getEnvInt("PAGE_SIZE_MIN", 5),
		PageSizeMax:    getEnvInt("PAGE_SIZE_MAX", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	for name, raw := range map[string]string{
		"API base URL": c.APIBaseURL,
		"rate API URL": c.RatesBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, raw, err))
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", name, parsed.Scheme))
		}
		if parsed.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': missing host", name, raw))
		}
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if c.RatesTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rates TTL %v: must be at least 1 minute", c.RatesTTL))
	}

	if c.SnapshotDBPath == "" {
		errors = append(errors, "snapshot database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SnapshotDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create snapshot database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.ViewportHeight < 1 {
		errors = append(errors, fmt.Sprintf("invalid viewport height %d: must be at least 1", c.ViewportHeight))
	}

	if c.PageSizeMin < 1 {
		errors = append(errors, fmt.Sprintf("invalid minimum page size %d: must be at least 1", c.PageSizeMin))
	}
	if c.PageSizeMax < c.PageSizeMin {
		errors = append(errors, fmt.Sprintf("invalid page size bounds [%d, %d]: max must not be below min", c.PageSizeMin, c.PageSizeMax))
	} else if c.PageSizeMax > 100 {
		errors = append(errors, fmt.Sprintf("invalid maximum page size %d: must be at most 100", c.PageSizeMax))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if c.LogLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
