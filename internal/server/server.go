// Package server is the composition root: it wires the store, services,
// handlers and middleware into one router and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config.Config → OpenStore → repository.Store
//	Store → NewServices → AuthService, CatalogService, PortfolioService
//	Services → handlers → chi routes
//
// Each layer only receives what it needs. Handlers never see the store and
// services never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/config"
	"github.com/ijwihub/studio-cms/internal/handler"
	"github.com/ijwihub/studio-cms/internal/middleware"
	"github.com/ijwihub/studio-cms/internal/repository"
	"github.com/ijwihub/studio-cms/internal/sweeper"
)

// Server owns the store and the sweeper; Start closes both on the way out.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	store    repository.Store
	services *Services
	sweeper  *sweeper.Sweeper
	logger   *slog.Logger
}

// New wires everything on top of an already opened store.
func New(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	services, err := NewServices(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		store:    store,
		services: services,
		logger:   logger,
	}

	if cfg.Sweeper.Enabled {
		s.sweeper, err = sweeper.New(store, sweeper.Config{
			Schedule:  cfg.Sweeper.Schedule,
			Retention: cfg.Sweeper.Retention,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers the middleware chain and every route.
//
// Middleware order:
//  1. RequestID: tags each request for the log line
//  2. RealIP: client address behind a proxy
//  3. Logger: one structured line per request
//  4. Recoverer: a panic becomes a 500 instead of killing the process
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	secure := s.config.Auth.CookieSecure
	authSvc := s.services.Auth
	requireAuth := auth.RequireAuth(authSvc)

	services := handler.NewServicesHandler(s.services.Catalog, s.logger)
	works := handler.NewPortfolioHandler(s.services.Portfolio, s.logger)
	authHandler := handler.NewAuthHandler(authSvc, secure, s.logger)
	admin, err := handler.NewAdminHandler(authSvc, s.services.Catalog, s.services.Portfolio,
		handler.AdminOptions{SecureCookie: secure}, s.logger)
	if err != nil {
		return err
	}

	s.router.Get("/healthz", handler.NewHealthHandler(s.store, s.logger).HandleHealth)

	// public reads, session-only writes
	s.router.Route("/services", func(r chi.Router) {
		r.Get("/", services.HandleList)
		r.Get("/{id}", services.HandleGet)
		r.With(requireAuth).Post("/", services.HandleCreate)
		r.With(requireAuth).Put("/{id}", services.HandleUpdate)
		r.With(requireAuth).Delete("/{id}", services.HandleDelete)
	})
	s.router.Route("/portfolio", func(r chi.Router) {
		r.Get("/", works.HandleList)
		r.Get("/{id}", works.HandleGet)
		r.With(requireAuth).Post("/", works.HandleCreate)
		r.With(requireAuth).Put("/{id}", works.HandleUpdate)
		r.With(requireAuth).Delete("/{id}", works.HandleDelete)
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(requireAuth).Post("/refresh", authHandler.HandleRefresh)
		r.With(requireAuth).Get("/session", authHandler.HandleSession)
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth.Guard(authSvc, auth.GuardOptions{
			Bypass: s.config.Auth.GuardBypass,
			Logger: s.logger,
		}))
		r.Get("/", admin.HandleRoot)
		r.Get("/login", admin.HandleLoginPage)
		r.Post("/login", admin.HandleLoginSubmit)
		r.Post("/logout", admin.HandleLogout)
		r.Get("/dashboard", admin.HandleDashboard)
		r.Get("/services", admin.HandleServices)
		r.Get("/portfolio", admin.HandlePortfolio)
	})

	return nil
}

// Start serves until ctx is canceled, then shuts down gracefully:
//  1. stop accepting connections and wait for in-flight requests
//  2. stop the session sweeper
//  3. close the store
func (s *Server) Start(ctx context.Context) error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	if s.sweeper != nil {
		s.sweeper.Start()
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("env", s.config.Server.Env),
			slog.String("store", s.config.Store.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	if s.sweeper != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s.sweeper.Stop(stopCtx)
		cancel()
	}

	if runErr == nil {
		s.logger.Info("server stopped gracefully")
	}
	return runErr
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.Server.ShutdownTimeout > 0 {
		return s.config.Server.ShutdownTimeout
	}
	return 30 * time.Second
}
