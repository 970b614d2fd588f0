// Package server is the wiring layer: it assembles the dependency graph
// (store → services → handlers), binds routes and middleware, and owns the
// HTTP server lifecycle. main.go stays minimal; everything composable lives
// here so tests can stand up a server without running main.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/talenthub/internal/auth"
	"github.com/sakif/talenthub/internal/config"
	"github.com/sakif/talenthub/internal/handler"
	"github.com/sakif/talenthub/internal/middleware"
	sqliteRepo "github.com/sakif/talenthub/internal/repository/sqlite"
	"github.com/sakif/talenthub/internal/service"
)

// Server holds the router, configuration, and the resources it owns.
// The database connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires the full dependency chain:
//
//	sqlite.DB → AuthService/ProfileService/AdminService → handlers → routes
//
// Each layer receives only what it needs — services get the repository
// interface, handlers get services, nothing reaches around a layer.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and binds every route.
//
// Route map:
//
//	POST   /register           public   create account
//	POST   /login              public   issue access token
//	POST   /forgot-password    public   issue reset code
//	POST   /verify-code        public   validate reset code
//	POST   /reset-password     public   set new password
//	POST   /api/upload         user     resume+photo upload
//	GET    /api/profile        user     own profile
//	GET    /api/users/{id}     user     any user by id
//	GET    /admin/dashboard    admin    counts + user list
//	GET    /admin/user/{id}    admin    user sans password
//	DELETE /admin/user/{id}    admin    delete account
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	adminPair := service.AdminPair{
		Email:    s.config.Auth.AdminEmail,
		Password: s.config.Auth.AdminPassword,
	}

	authService := service.NewAuthService(s.db, tokens, passwords, adminPair, s.config.BaseURL, s.logger)
	profileService := service.NewProfileService(s.db, s.config.BaseURL, s.logger)
	adminService := service.NewAdminService(s.db, s.config.BaseURL, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, s.logger)

	// Global middleware, in order: request ID and real IP for tracing,
	// panic recovery, CORS, then our request logger.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.TrustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Logger(s.logger))

	// Public credential endpoints.
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/forgot-password", authHandler.HandleForgotPassword)
	s.router.Post("/verify-code", authHandler.HandleVerifyCode)
	s.router.Post("/reset-password", authHandler.HandleResetPassword)

	// Authenticated user endpoints: the two-stage gate's first stage only.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/upload", profileHandler.HandleUpload)
		r.Get("/profile", profileHandler.HandleProfile)
		r.Get("/users/{id}", profileHandler.HandleGetUser)
	})

	// Admin endpoints: both stages — valid token, then role check.
	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Use(auth.RequireAdmin)
		r.Get("/dashboard", adminHandler.HandleDashboard)
		r.Get("/user/{id}", adminHandler.HandleGetUser)
		r.Delete("/user/{id}", adminHandler.HandleDeleteUser)
	})

	return nil
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests within
// the configured timeout, and close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
