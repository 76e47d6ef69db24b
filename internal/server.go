package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/akorhonen/restaurant-browser/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RoutesRegistry is a function that registers routes on a chi.Router
type RoutesRegistry func(r chi.Router)

// ServiceConfig carries the settings needed to build a Service.
type ServiceConfig struct {
	Addr         string
	Logger       *slog.Logger
	Routes       RoutesRegistry
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Service wraps an HTTP server with its configuration and router
type Service struct {
	Addr   string
	Logger *slog.Logger

	HTTPServer *http.Server
	Router     *chi.Mux
}

// NewService builds the router, applies common middleware, registers the
// given routes and wraps everything in an http.Server with sane timeouts.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		Addr:   cfg.Addr,
		Logger: cfg.Logger,
	}

	s.Router = chi.NewRouter()

	// Initialize common middleware
	s.Router.Use(middleware.RequestID)
	s.Router.Use(logging.RequestLogger(cfg.Logger))
	s.Router.Use(middleware.Recoverer)

	// Register routes
	if cfg.Routes != nil {
		cfg.Routes(s.Router)
	}

	// Apply default timeouts if not provided
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// ListenAndServeWrapper starts the http service
func (s *Service) ListenAndServeWrapper(service string) error {
	s.Logger.Info("starting http service", slog.String("service", service), slog.String("port", s.HTTPServer.Addr))
	return s.HTTPServer.ListenAndServe()
}
