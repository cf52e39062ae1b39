package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:5000/api",
		HTTPTimeout:    15 * time.Second,
		RatesBaseURL:   "https://api.frankfurter.app",
		RatesTTL:       10 * time.Minute,
		SnapshotDBPath: "./test.db",
		ViewportHeight: 1030,
		PageSizeMin:    5,
		PageSizeMax:    10,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid API base URL scheme",
			mutate:      func(c *Config) { c.APIBaseURL = "ftp://localhost:5000" },
			wantErr:     true,
			errorString: "must be 'http' or 'https'",
		},
		{
			name:        "API base URL without host",
			mutate:      func(c *Config) { c.APIBaseURL = "http://" },
			wantErr:     true,
			errorString: "missing host",
		},
		{
			name:        "invalid rate API URL scheme",
			mutate:      func(c *Config) { c.RatesBaseURL = "amqp://localhost" },
			wantErr:     true,
			errorString: "must be 'http' or 'https'",
		},
		{
			name:        "HTTP timeout too short",
			mutate:      func(c *Config) { c.HTTPTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid HTTP timeout 500ms: must be at least 1 second",
		},
		{
			name:        "HTTP timeout too long",
			mutate:      func(c *Config) { c.HTTPTimeout = 10 * time.Minute },
			wantErr:     true,
			errorString: "must be at most 5 minutes",
		},
		{
			name:        "rates TTL too short",
			mutate:      func(c *Config) { c.RatesTTL = 5 * time.Second },
			wantErr:     true,
			errorString: "invalid rates TTL 5s: must be at least 1 minute",
		},
		{
			name:        "empty snapshot database path",
			mutate:      func(c *Config) { c.SnapshotDBPath = "" },
			wantErr:     true,
			errorString: "snapshot database path cannot be empty",
		},
		{
			name:        "invalid viewport height",
			mutate:      func(c *Config) { c.ViewportHeight = 0 },
			wantErr:     true,
			errorString: "invalid viewport height 0: must be at least 1",
		},
		{
			name:        "page size min below 1",
			mutate:      func(c *Config) { c.PageSizeMin = 0 },
			wantErr:     true,
			errorString: "invalid minimum page size 0: must be at least 1",
		},
		{
			name:        "page size max below min",
			mutate:      func(c *Config) { c.PageSizeMax = 3 },
			wantErr:     true,
			errorString: "invalid page size bounds [5, 3]: max must not be below min",
		},
		{
			name:        "page size max too large",
			mutate:      func(c *Config) { c.PageSizeMax = 500 },
			wantErr:     true,
			errorString: "invalid maximum page size 500: must be at most 100",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose': must be one of [debug info warn error]",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml': must be 'text' or 'json'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"API_BASE_URL":     os.Getenv("API_BASE_URL"),
		"HTTP_TIMEOUT":     os.Getenv("HTTP_TIMEOUT"),
		"RATES_BASE_URL":   os.Getenv("RATES_BASE_URL"),
		"SNAPSHOT_DB_PATH": os.Getenv("SNAPSHOT_DB_PATH"),
		"VIEWPORT_HEIGHT":  os.Getenv("VIEWPORT_HEIGHT"),
		"LOG_LEVEL":        os.Getenv("LOG_LEVEL"),
	}

	// Clean environment
	for key := range originalVars {
		os.Unsetenv(key)
	}

	// Restore env vars at end of test
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.APIBaseURL != "http://localhost:5000/api" {
			t.Errorf("Load() APIBaseURL = %v, want http://localhost:5000/api", cfg.APIBaseURL)
		}
		if cfg.HTTPTimeout != 15*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
		}
		if cfg.SnapshotDBPath != "./data/trirule.db" {
			t.Errorf("Load() SnapshotDBPath = %v, want ./data/trirule.db", cfg.SnapshotDBPath)
		}
		if cfg.ViewportHeight != 1030 {
			t.Errorf("Load() ViewportHeight = %v, want 1030", cfg.ViewportHeight)
		}
		if cfg.PageSizeMin != 5 || cfg.PageSizeMax != 10 {
			t.Errorf("Load() page size bounds = [%v, %v], want [5, 10]", cfg.PageSizeMin, cfg.PageSizeMax)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("API_BASE_URL", "https://finance.example.com/api")
		os.Setenv("HTTP_TIMEOUT", "30s")
		os.Setenv("SNAPSHOT_DB_PATH", "/tmp/test.db")
		os.Setenv("VIEWPORT_HEIGHT", "760")
		os.Setenv("LOG_LEVEL", "debug")

		cfg := Load()

		if cfg.APIBaseURL != "https://finance.example.com/api" {
			t.Errorf("Load() APIBaseURL = %v, want https://finance.example.com/api", cfg.APIBaseURL)
		}
		if cfg.HTTPTimeout != 30*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
		}
		if cfg.SnapshotDBPath != "/tmp/test.db" {
			t.Errorf("Load() SnapshotDBPath = %v, want /tmp/test.db", cfg.SnapshotDBPath)
		}
		if cfg.ViewportHeight != 760 {
			t.Errorf("Load() ViewportHeight = %v, want 760", cfg.ViewportHeight)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("HTTP_TIMEOUT", "invalid")
		os.Setenv("VIEWPORT_HEIGHT", "invalid")

		cfg := Load()

		if cfg.HTTPTimeout != 15*time.Second {
			t.Errorf("Load() HTTPTimeout = %v, want 15s (default for invalid input)", cfg.HTTPTimeout)
		}
		if cfg.ViewportHeight != 1030 {
			t.Errorf("Load() ViewportHeight = %v, want 1030 (default for invalid input)", cfg.ViewportHeight)
		}
	})
}
