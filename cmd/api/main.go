package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/fingdb/internal/background"
	"github.com/BradenHooton/fingdb/internal/config"
	"github.com/BradenHooton/fingdb/internal/handlers"
	middlewareCustom "github.com/BradenHooton/fingdb/internal/middleware"
	"github.com/BradenHooton/fingdb/internal/repositories"
	"github.com/BradenHooton/fingdb/internal/routes"
	"github.com/BradenHooton/fingdb/internal/services"
	pkgauth "github.com/BradenHooton/fingdb/pkg/auth"
	"github.com/BradenHooton/fingdb/pkg/clock"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logLevel.Set(parseLogLevel(cfg.Server.LogLevel))
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// In-memory state; lost on restart
	loginAttemptRepo := repositories.NewLoginAttemptRepository()
	sessionRepo := repositories.NewSessionRepository()

	clk := clock.System{}
	guard := services.NewLoginGuard(loginAttemptRepo, services.GuardConfig{
		MaxAttempts:     cfg.Auth.MaxAttempts,
		LockoutDuration: cfg.Auth.LockoutDuration,
	}, clk, logger)
	registry := services.NewSessionRegistry(sessionRepo, cfg.Auth.SessionTTL, clk, logger)

	credentials := pkgauth.Credentials{Username: cfg.Auth.AdminUser, Password: cfg.Auth.AdminPassword}
	if pkgauth.IsBcryptHash(credentials.Password) {
		logger.Info("admin password configured as bcrypt hash")
	}

	auditLogger := pkglogger.NewAuditLogger(logger)
	authService := services.NewAuthService(guard, registry, credentials, logger, auditLogger)
	authHandler := handlers.NewAuthHandler(authService)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(map[string]background.Sweeper{
		"sessions":       registry,
		"login_attempts": guard,
	}, logger, cfg.Auth.CleanupInterval)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, authService, routes.Config{
		APIKey:         cfg.Auth.APIKey,
		LoginRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.LoginRequestsPerMinute},
		AuditLogger:    auditLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
