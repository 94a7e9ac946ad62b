package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"raspadinha/api"
	"raspadinha/config"
	"raspadinha/database"
	"raspadinha/events"
	"raspadinha/outcome"
	"raspadinha/repository"
	"raspadinha/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting raspadinha server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services. Catalog validation happens here; a broken
	// prize table refuses to start.
	log.Info("Initializing services...")
	userService := service.NewUserService(uowFactory)
	categoryRepo := repository.NewCategoryRepository(db)
	playService, err := service.NewPlayService(ctx, uowFactory, categoryRepo, outcome.NewGenerator(nil))
	if err != nil {
		return fmt.Errorf("failed to initialize play service: %w", err)
	}
	reconciliationService := service.NewReconciliationService(uowFactory)
	log.Info("Services initialized successfully")

	// Start the orphan sweeper
	stopSweeper := service.StartSweeper(ctx, reconciliationService)
	defer stopSweeper()

	// Start the HTTP server
	server := api.NewServer(userService, playService)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("Server is running in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}
