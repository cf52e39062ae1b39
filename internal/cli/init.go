// Package cli provides common CLI initialization utilities shared by
// cmd/trirule and cmd/trirule-transfer.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"trirule/internal/config"
	"trirule/internal/log"
	"trirule/internal/store"
)

// SetupLogger initializes structured logging from the config values and
// sets the result as the default logger. Output goes to stderr so the
// terminal UI keeps stdout to itself.
func SetupLogger(level, format string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Handler:   log.NewHandler(format, log.ParseLevel(level)),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore opens the local snapshot database.
// Returns the store or exits the process on failure.
func InitStore(logger *log.Logger, dbPath string) *store.Store {
	s, err := store.New(dbPath)
	if err != nil {
		logger.WithComponent(log.ComponentStore).Error("Failed to open snapshot database",
			log.FieldOperation, log.OpStartup,
			log.FieldError, err,
			log.FieldFile, dbPath)
		os.Exit(1)
	}
	return s
}

// GracefulShutdown installs SIGINT/SIGTERM handling. The returned
// context is cancelled when a signal arrives; the main loop observes
// the cancellation, winds down and then calls the returned shutdown
// function. Shutdown runs cleanup exactly once, so the signal path and
// the normal exit path can share it.
func GracefulShutdown(logger *log.Logger, cleanup func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			if cleanup != nil {
				cleanup()
			}
			cancel()
			logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
		})
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			log.FieldOperation, log.OpShutdown,
			"signal", sig.String())
		cancel()
	}()

	return ctx, shutdown
}
