// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/syab726/project2-face-sub001/internal/application/container"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/email"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/retention"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
	"github.com/syab726/project2-face-sub001/internal/presentation/http/server"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until shutdown
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `

  ▄████ ▄▄▄  ▄████ ▄████ ▄█████ ▄████  ▄▄▄  ▄████ ██ ▄██
  ██▄▄  ▄▄██ ██    ██▄▄    ██   ██▄▄█▄ ▄▄██ ██    ██▄██
  ██    ██▄█ ██▄▄█ ██▄▄█   ██   ██  ██ ██▄█ ██▄▄█ ██ ▀█▄
` + "\033[97m" + `
  anonymous session tracking for facewisdom-ai
` + "\033[0m")

	// Step 1: Initialize channeled logging
	log.Println("Initializing channeled logging...")
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	// Step 2: Initialize performance tracking
	logger.Startup().Info("Initializing performance tracker")
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	// Step 3: Initialize the tracking store (empty maps, in-memory only)
	logger.Startup().Info("Initializing tracking store")
	trackingStore := store.NewTrackingStore(logger)

	// Step 4: Initialize the email collaborator. Missing credentials degrade
	// to logged contact intents rather than failing startup.
	logger.Startup().Info("Initializing email service...")
	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Email service unavailable, contact intents will only be logged", "reason", err.Error())
		emailService = nil
	}

	// Step 5: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(trackingStore, logger, perfTracker, emailService)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Start background retention worker
	logger.Startup().Info("Starting background retention worker...")
	startWorkerTime := time.Now()

	retentionConfig := retention.DefaultConfig()
	retentionWorker := retention.NewWorker(trackingStore, retentionConfig, logger, perfTracker)
	go retentionWorker.Start(ctx)

	logger.Startup().Info("Background retention worker started",
		"interval", retentionConfig.SweepInterval.String(),
		"sessionTtl", retentionConfig.SessionTTL.String(),
		"duration", time.Since(startWorkerTime))

	// Step 7: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	port := config.Port
	httpServer := server.New(port, appContainer)

	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 8: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Everything is in memory, so shutdown drops all sessions.
	logger.Shutdown().Info("Dropping in-memory tracking state",
		"sessions", trackingStore.SessionCount())

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
