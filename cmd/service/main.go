package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akorhonen/restaurant-browser/internal"
	"github.com/akorhonen/restaurant-browser/internal/api"
	"github.com/akorhonen/restaurant-browser/internal/app"
	"github.com/akorhonen/restaurant-browser/internal/clientstate"
	"github.com/akorhonen/restaurant-browser/internal/config"
	"github.com/akorhonen/restaurant-browser/internal/favourites"
	"github.com/akorhonen/restaurant-browser/internal/logging"
	"github.com/akorhonen/restaurant-browser/internal/routes"
	"github.com/akorhonen/restaurant-browser/internal/session"
	"github.com/akorhonen/restaurant-browser/internal/views"
)

func main() {
	// Initialize shared dependencies
	logger := logging.NewLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("ui_addr", cfg.UIAddr()),
		slog.String("health_addr", cfg.HealthAddr()),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// Open the durable client state directory
	store, err := clientstate.NewFileStore(cfg.StateDir)
	if err != nil {
		logger.Error("failed to open state directory", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	logger.Info("client state ready", slog.String("dir", cfg.StateDir))

	// Wire the remote API client and the application layers
	client := api.New(cfg.APIBaseURL, cfg.MenuLanguage, logger)
	favs := favourites.New(store, client, logger)
	sessions := session.NewManager(store, client, favs, logger)
	controller := app.New(client, client, favs, views.NopMap{}, logger)

	// Create health check and UI gateway http services
	healthService := internal.NewService(internal.ServiceConfig{
		Addr:   cfg.HealthAddr(),
		Logger: logger,
		Routes: routes.RegisterHealthRoutes(client),
	})
	uiService := internal.NewService(internal.ServiceConfig{
		Addr:   cfg.UIAddr(),
		Logger: logger,
		Routes: routes.Register(controller, sessions, routes.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimit:      cfg.RateLimitConfig(),
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	// Start http service threads
	go func() {
		if err := healthService.ListenAndServeWrapper("health check api"); err != nil && err != http.ErrServerClosed {
			logger.Error("health check service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()
	go func() {
		if err := uiService.ListenAndServeWrapper("ui gateway"); err != nil && err != http.ErrServerClosed {
			logger.Error("ui gateway service failed", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}()

	// Warm the catalog so the first list render has data. Failures leave
	// an error message in the view and the UI can retry.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if view := controller.LoadCatalog(warmCtx); view.Error != "" {
		logger.Warn("initial catalog load failed", slog.String("message", view.Error))
	} else {
		logger.Info("catalog loaded", slog.Int("restaurants", len(view.Entries)))
	}
	warmCancel()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	// Shutdown http service threads gracefully
	logger.Info("shutting down service", slog.Any("OS signal received", os.Signal.String(receivedSignal)))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := uiService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("ui gateway shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	if err := healthService.HTTPServer.Shutdown(ctx); err != nil {
		logger.Error("health service shutdown error", slog.String(logging.ErrorKey, err.Error()))
	}
	logger.Info("exiting...")
}
