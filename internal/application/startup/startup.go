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

	"github.com/AtRiskMedia/pagegrid-go/internal/application/container"
	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	persistence "github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/pagegrid-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Channeled logger
	log.Println("Initializing logger...")
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    config.LogToFile,
		OutputToConsole: true,
		LogDirectory:    config.LogDirectory,
		JSONFormat:      true,
		DefaultLevel:    logging.ParseLevel(config.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Logger initialized - switching to channeled logging", "level", config.LogLevel)

	// Step 2: Database connection
	phaseStart := time.Now()
	opts := persistence.OptionsFromConfig()
	if opts.Driver == persistence.DriverLibSQL {
		if err := persistence.ProbeRemote(opts, logger); err != nil {
			logger.LogStartupPhase("database", time.Since(phaseStart), false)
			return fmt.Errorf("turso connection test failed: %w", err)
		}
	}
	db, err := persistence.NewConnectionWithLogger(opts, logger)
	if err != nil {
		logger.LogStartupPhase("database", time.Since(phaseStart), false)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.LogStartupPhase("database", time.Since(phaseStart), true)

	// Step 3: Schema and content-type registry
	phaseStart = time.Now()
	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	contentTypes, err := services.LoadContentTypes(config.ContentTypesFile)
	if err != nil {
		return fmt.Errorf("failed to load content types: %w", err)
	}
	logger.LogStartupPhase("schema", time.Since(phaseStart), true)

	// Step 4: Editor authentication
	authConfig := services.AuthConfig{
		PasswordHash: config.EditorPasswordHash,
		JWTSecret:    config.EditorJWTSecret,
		TokenTTL:     config.EditorTokenTTL,
	}
	if authConfig.PasswordHash != "" && authConfig.JWTSecret == "" {
		secret, err := security.NewSigningSecret()
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		authConfig.JWTSecret = secret
		logger.Startup().Warn("EDITOR_JWT_SECRET not set - generated an ephemeral secret; tokens will not survive a restart")
	}
	if authConfig.JWTSecret == "" {
		logger.Startup().Warn("Editor authentication disabled - set EDITOR_PASSWORD_HASH to protect the editing API")
	}

	// Step 5: Dependency injection container
	appContainer := container.NewContainer(db, logger, authConfig)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// The seed file is the source of truth for every type it declares.
	synced, err := appContainer.ContentTypeService.SyncRegistry(contentTypes)
	if err != nil {
		return fmt.Errorf("failed to sync content types: %w", err)
	}
	logger.Startup().Info("Content types ready", "synced", synced, "source", config.ContentTypesFile)

	// Step 6: Background workers
	go appContainer.Broadcaster.Run(ctx)
	go appContainer.CleanupWorker.Start(ctx)
	logger.Startup().Info("Background workers started", "cleanupInterval", config.CacheCleanupInterval)

	// Step 7: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
			return err
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures the standard logger used before the channeled
// logger exists.
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
