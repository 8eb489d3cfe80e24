package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"business-crm-go/internal/business"
	"business-crm-go/internal/contact"
	"business-crm-go/internal/database"
	"business-crm-go/internal/geography"
	"business-crm-go/internal/handler"
	"business-crm-go/pkg/config"
	"business-crm-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Connect(ctx, cfg)
	cancel()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		applied, err := database.Migrate(context.Background(), db, log)
		if err != nil {
			log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		log.Info("Database schema ready", "applied", applied, "version", database.SchemaVersion())
	}

	// Initialize services
	businessService := business.NewBusinessService(db, log)
	contactService := contact.NewContactService(db, log)
	geographyService := geography.NewGeographyService(db)

	// Initialize handlers
	errs := handler.NewErrorResponder(log, cfg.ExposeErrorDetails)
	router := handler.NewRouter(cfg, log, handler.Handlers{
		Business: handler.NewBusinessHandler(businessService, errs),
		Contact:  handler.NewContactHandler(contactService, errs),
		Data:     handler.NewDataHandler(businessService, geographyService, db, errs),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		log.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down server", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}
	log.Info("Server stopped")
}
