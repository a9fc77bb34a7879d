// Package server wires the HTTP router, middleware chain, and all route
// definitions. It is the composition root: handlers, services, and the
// database are assembled here and nowhere else.
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
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/config"
	"github.com/shaunstone0/stone-budget/internal/handler"
	"github.com/shaunstone0/stone-budget/internal/middleware"
	sqliteRepo "github.com/shaunstone0/stone-budget/internal/repository/sqlite"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and password
// services, domain services, handlers, routes. Default categories are
// seeded idempotently on startup.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.SeedCategories(context.Background(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding categories: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        s.cfg.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Compress(5))
	s.router.Use(secureMiddleware.Handler)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))

	tokens := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenLifetime, s.logger)
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	categoryService := service.NewCategoryService(s.db, s.logger)
	bankService := service.NewBankService(s.db, s.logger)
	billService := service.NewBillService(s.db, s.db, s.db, s.logger)
	balanceService := service.NewBalanceService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, s.logger)
	bankHandler := handler.NewBankHandler(bankService, s.logger)
	billHandler := handler.NewBillHandler(billService, s.logger)
	balanceHandler := handler.NewBalanceHandler(balanceService, s.logger)

	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.db, s.logger))

			r.Get("/auth/profile", authHandler.HandleProfile)
			r.Get("/auth/verify", authHandler.HandleVerify)
			r.Post("/auth/logout", authHandler.HandleLogout)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.HandleList)
				r.Post("/", categoryHandler.HandleCreate)
				r.Get("/{id}", categoryHandler.HandleGet)
				r.Put("/{id}", categoryHandler.HandleUpdate)
				r.Delete("/{id}", categoryHandler.HandleDelete)
			})

			r.Route("/banks", func(r chi.Router) {
				r.Get("/", bankHandler.HandleList)
				r.Post("/", bankHandler.HandleCreate)
				r.Get("/{id}", bankHandler.HandleGet)
				r.Put("/{id}", bankHandler.HandleUpdate)
				r.Delete("/{id}", bankHandler.HandleDelete)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", billHandler.HandleList)
				r.Post("/", billHandler.HandleCreate)
				r.Get("/{id}", billHandler.HandleGet)
				r.Put("/{id}", billHandler.HandleUpdate)
				r.Delete("/{id}", billHandler.HandleDelete)
			})

			r.Route("/balances", func(r chi.Router) {
				r.Get("/", balanceHandler.HandleList)
				r.Post("/", balanceHandler.HandleCreate)
				r.Get("/{id}", balanceHandler.HandleGet)
				r.Put("/{id}", balanceHandler.HandleUpdate)
				r.Delete("/{id}", balanceHandler.HandleDelete)
			})
		})
	})
}

// Router exposes the configured router, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.AppAddr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.AppReadTimeout,
		WriteTimeout: s.cfg.AppWriteTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.cfg.AppAddr),
			slog.String("env", s.cfg.AppEnv),
			slog.String("database", s.cfg.DBPath),
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

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
