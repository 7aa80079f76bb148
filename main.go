package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskui/internal/config"
	"taskui/internal/database"
	logger "taskui/internal/logging"
	"taskui/internal/models"
	"taskui/internal/paradigm"
	"taskui/internal/router"
)

func main() {
	projectRoot, err := os.Getwd()
	if err != nil {
		panic("failed to resolve working directory: " + err.Error())
	}

	// Initialize Logger with defaults so configuration loading itself is
	// logged; rebuilt below once the configured settings are known.
	log, err := logger.Init(projectRoot, logger.DefaultOptions())
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	// Initialize Configuration
	if err := config.Init(projectRoot, log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Re-point the logger at the configured directory and rotation policy
	if configured, err := logger.Init(projectRoot, logger.Options{
		Directory:  config.Conf.Logging.Directory,
		MaxSize:    config.Conf.Logging.MaxSize,
		MaxBackups: config.Conf.Logging.MaxBackups,
		MaxAge:     config.Conf.Logging.MaxAge,
		Compress:   config.Conf.Logging.Compress,
	}); err != nil {
		log.Warn("Failed to apply logging configuration, keeping defaults", zap.Error(err))
	} else {
		_ = log.Sync()
		log = configured
	}

	// Initialize Database when persistence is enabled
	if config.Conf.Database.Enabled {
		database.Init(log)
	} else {
		log.Info("Database persistence disabled; runs are exported to disk only")
	}

	// Load paradigm presets at startup
	presets, err := models.LoadPresets(config.Conf.Paradigms.PresetsFile)
	if err != nil {
		log.Warn("Failed to load paradigm presets, using defaults", zap.Error(err))
		presets = models.DefaultPresets()
	}

	registry := paradigm.NewRegistry()

	// Setup router, passing the logger to it
	r := router.Setup(log, registry, presets)

	srv := &http.Server{
		Addr:    ":" + config.Conf.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("Server listening on http://localhost:" + config.Conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	// Block until a shutdown signal arrives, then abort any in-flight run so
	// its log reaches a terminal state before the process exits.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	if run, err := registry.Active(); err == nil {
		_ = run.Abort(models.AbortReasonShutdown)
		select {
		case <-run.Done():
		case <-time.After(5 * time.Second):
			log.Warn("Active run did not finish before shutdown deadline")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
