package routes

import (
	"net/http"

	"github.com/BradenHooton/fingdb/internal/auth"
	"github.com/BradenHooton/fingdb/internal/handlers"
	"github.com/BradenHooton/fingdb/internal/middleware"
	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Mount registers resource routes on a router that already enforces authentication
type Mount func(r chi.Router)

// Config wires the auth guards and any resource routers mounted behind them
type Config struct {
	APIKey         string
	LoginRateLimit middleware.RateLimitConfig
	AuditLogger    *pkglogger.AuditLogger

	// Reads run behind a bearer session
	Reads []Mount
	// Writes need a bearer session and the API key
	Writes []Mount
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	authenticator auth.Authenticator,
	cfg Config,
) {
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, "Resource not found")
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Public routes - no authentication required
	router.With(middleware.RateLimitByClient(cfg.LoginRateLimit)).Post("/auth/login", authHandler.Login)
	router.Post("/auth/logout", authHandler.Logout)

	// API key routes
	router.With(auth.RequireAPIKey(cfg.APIKey)).Get("/auth/status", authHandler.Status)

	// Protected routes - bearer session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(authenticator, cfg.AuditLogger))

		r.Get("/auth/me", authHandler.Me)

		for _, mount := range cfg.Reads {
			mount(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAPIKey(cfg.APIKey))
			for _, mount := range cfg.Writes {
				mount(r)
			}
		})
	})
}
