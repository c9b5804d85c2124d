// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects the store, services,
// handlers, middleware and routes, and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config.Config, *slog.Logger, repository.Store, *metrics.Metrics → passed to Server
//	Server.New() creates: TokenService, PasswordService → services → handlers
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/vgb/internal/auth"
	"github.com/sakif/vgb/internal/config"
	"github.com/sakif/vgb/internal/handler"
	"github.com/sakif/vgb/internal/metrics"
	"github.com/sakif/vgb/internal/middleware"
	"github.com/sakif/vgb/internal/repository"
	"github.com/sakif/vgb/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store it is given. Start closes it after the HTTP
// server has drained, so pending writes are flushed and file locks released.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	store   repository.Store
	metrics *metrics.Metrics // nil disables request metrics and /metrics
}

// New creates a new Server.
//
// DEPENDENCY INJECTION & WIRING:
//  1. Build the token and password services from the auth config
//  2. Create the services over the store's repositories
//  3. Create the handlers with the services
//  4. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete store)
// - Handlers get services (not the repositories)
func New(cfg *config.Config, store repository.Store, logger *slog.Logger, m *metrics.Metrics) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: m,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the root HTTP handler. Tests mount it on httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /api/health                       → store health
// GET    /api/pages/{page}                 → page file for the caller's role [optional auth]
// GET    /api/games, /api/releases         → list games (filters: genre, platform, search, limit, offset)
// GET    /api/games/{id}                   → single game
// POST   /api/games                        → create game        [admin]
// PUT    /api/games/{id}                   → update game        [admin]
// DELETE /api/games/{id}                   → delete game        [admin]
// POST   /api/users                        → register
// POST   /api/users/login                  → login
// GET    /api/users/me                     → current user       [auth]
// GET    /api/comments/games/{gameId}      → list comments
// POST   /api/comments/games/{gameId}      → post comment       [auth]
// DELETE /api/comments/{id}                → delete comment     [owner or admin]
// GET    /api/favorites/users/{userId}     → list favorites     [owner or admin]
// POST   /api/favorites/users/{userId}     → add favorite       [owner]
// DELETE /api/favorites/{id}               → remove favorite    [owner]
// GET    /metrics                          → Prometheus exposition
//
// Every route under /api/games is also reachable under /api/releases.
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request, after recovery so panics show up as 500s
// 4. Metrics: counts requests by route pattern, recovered panics included
// 5. Recoverer: turns panics into the 500 envelope
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}
	s.router.Use(middleware.Recoverer(s.logger))

	// Set before any Route/Mount so subrouters inherit them.
	s.router.NotFound(routeNotFound)
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusMethodNotAllowed, handler.Response{
			Success: false,
			Message: "Method not allowed",
			Path:    r.URL.Path,
		})
	})

	// === Auth ===
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordServiceWithCost(s.config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}

	// === Services ===
	// Notice: handlers never touch the store directly and services never
	// touch HTTP.
	authService := service.NewAuthService(s.store.Users(), tokens, passwords, s.logger)
	if s.metrics != nil {
		authService.WithRecorder(s.metrics)
	}
	gameService := service.NewGameService(s.store.Games(), s.logger)
	commentService := service.NewCommentService(s.store.Comments(), s.store.Games(), s.store.Users(), s.logger)
	favoriteService := service.NewFavoriteService(s.store.Favorites(), s.store.Games(), s.logger)

	// === Handlers ===
	userHandler := handler.NewUserHandler(authService, s.logger)
	gameHandler := handler.NewGameHandler(gameService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)
	pageHandler := handler.NewPageHandler()

	requireAuth := auth.RequireAuth(authService)

	gameRoutes := func(r chi.Router) {
		r.Get("/", gameHandler.HandleList)
		r.Get("/{id}", gameHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", gameHandler.HandleCreate)
			r.Put("/{id}", gameHandler.HandleUpdate)
			r.Delete("/{id}", gameHandler.HandleDelete)
		})
	}

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)
		r.With(auth.OptionalAuth(authService)).Get("/pages/{page}", pageHandler.HandleRoute)

		r.Route("/games", gameRoutes)
		r.Route("/releases", gameRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleRegister)
			r.Post("/login", userHandler.HandleLogin)
			r.With(requireAuth).Get("/me", userHandler.HandleMe)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/games/{gameId}", commentHandler.HandleList)
			r.With(requireAuth).Post("/games/{gameId}", commentHandler.HandleCreate)
			r.With(requireAuth).Delete("/{id}", commentHandler.HandleDelete)
		})

		// Auth goes on each route, not r.Use: a subrouter middleware also
		// wraps the subrouter's NotFound handler.
		r.Route("/favorites", func(r chi.Router) {
			r.With(requireAuth).Get("/users/{userId}", favoriteHandler.HandleList)
			r.With(requireAuth).Post("/users/{userId}", favoriteHandler.HandleAdd)
			r.With(requireAuth).Delete("/{id}", favoriteHandler.HandleRemove)
		})
	})

	// === Metrics ===
	if s.metrics != nil && s.config.Metrics.Enabled {
		s.router.Handle(s.config.Metrics.Path, s.metrics.Handler())
	}

	// === Static Files ===
	// The frontend pages call the API from the same origin.
	// GET /calendar.html → {StaticDir}/calendar.html
	// Paths with no file behind them get the JSON 404, like unknown API routes.
	if dir := s.config.Server.StaticDir; dir != "" {
		root := http.Dir(dir)
		fileServer := http.FileServer(root)
		s.router.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !staticExists(root, r.URL.Path) {
				routeNotFound(w, r)
				return
			}
			fileServer.ServeHTTP(w, r)
		}))
	}

	return nil
}

// routeNotFound answers unmatched paths with the failure envelope.
func routeNotFound(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusNotFound, handler.Response{
		Success: false,
		Message: "Route not found",
		Path:    r.URL.Path,
	})
}

// staticExists reports whether urlPath names a file or directory under
// root. http.Dir rejects paths that escape the root.
func staticExists(root http.Dir, urlPath string) bool {
	f, err := root.Open(path.Clean("/" + urlPath))
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Stat()
	return err == nil
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (server.shutdown_timeout)
// 3. Close the store (flushes the WAL or drains the pool)
func (s *Server) Start(ctx context.Context) error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
