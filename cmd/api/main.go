package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/docs"
	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/config"
	"github.com/BarkinBalci/fall-event-service/internal/handler"
	"github.com/BarkinBalci/fall-event-service/internal/logger"
	"github.com/BarkinBalci/fall-event-service/internal/notify"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
	"github.com/BarkinBalci/fall-event-service/internal/repository/flatfile"
	"github.com/BarkinBalci/fall-event-service/internal/service"
	"github.com/BarkinBalci/fall-event-service/internal/store"
)

const shutdownTimeout = 10 * time.Second

// @title Fall Event Service API
// @version 1.0
// @description Ingests fall reports from sensor devices, alerts an emergency contact by SMS and serves the event history
// @host localhost:5000
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "fall-event-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting fall event service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.Port))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	c, err := clock.New(cfg.Service.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone", zap.Error(err))
	}

	// Initialize fallback file
	file, err := flatfile.Open(cfg.Storage.FallbackFile)
	if err != nil {
		log.Fatal("Failed to open fallback file", zap.Error(err))
	}

	// Initialize primary store; any failure leaves the service on the fallback file
	var primary repository.EventRepository
	repo, err := store.OpenPrimary(ctx, cfg, log)
	switch {
	case errors.Is(err, repository.ErrPrimaryDisabled):
		log.Warn("No primary store configured, using fallback file only")
	case err != nil:
		log.Error("Primary store unavailable, using fallback file only", zap.Error(err))
	default:
		primary = repo
	}

	eventStore := store.New(primary, file, time.Duration(cfg.Storage.PrimaryTimeoutSec)*time.Second, log)
	defer func() {
		if err := eventStore.Close(); err != nil {
			log.Error("Failed to close primary store", zap.Error(err))
		}
	}()

	// Initialize SMS gateway
	provider, err := notify.NewProvider(ctx, cfg, log)
	if err != nil {
		log.Warn("SMS provider not configured, alerts disabled",
			zap.String("provider", cfg.Notification.Provider),
			zap.Error(err))
		provider = nil
	}
	notifyTimeout := time.Duration(cfg.Notification.TimeoutSec) * time.Second
	gateway := notify.NewSMSGateway(ctx, provider, cfg.Notification.Recipient, notifyTimeout, log)

	// Initialize event service
	eventService := service.NewFallEventService(eventStore, gateway, c, log)

	// Initialize handler
	h := handler.NewHandler(eventService, cfg.Service.Port, log)

	log.Info("Service ready",
		zap.String("timezone", c.Zone()),
		zap.String("dashboard", fmt.Sprintf("http://localhost:%s/", cfg.Service.Port)),
		zap.String("database", eventStore.Backend()),
		zap.String("primary", eventStore.PrimaryName()),
		zap.String("fallback_file", eventStore.FallbackPath()),
		zap.Bool("sms_enabled", gateway.Available()),
		zap.String("sms_provider", gateway.Provider()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server gracefully")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
}
