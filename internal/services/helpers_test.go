package services_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/internal/repositories"
	"github.com/BradenHooton/fingdb/internal/services"
	pkgauth "github.com/BradenHooton/fingdb/pkg/auth"
	"github.com/BradenHooton/fingdb/pkg/clock"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
)

var testEpoch = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type testEnv struct {
	clock    *clock.Mock
	attempts *repositories.LoginAttemptRepository
	sessions *repositories.SessionRepository
	guard    *services.LoginGuard
	registry *services.SessionRegistry
	auth     *services.AuthService
}

// newTestEnv wires an isolated guard, registry and auth service around a mock clock
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := discardLogger()
	clk := clock.NewMock(testEpoch)
	attempts := repositories.NewLoginAttemptRepository()
	sessions := repositories.NewSessionRepository()

	guard := services.NewLoginGuard(attempts, services.GuardConfig{}, clk, logger)
	registry := services.NewSessionRegistry(sessions, 0, clk, logger)
	authService := services.NewAuthService(guard, registry,
		pkgauth.Credentials{Username: "admin", Password: "secret"},
		logger, pkglogger.NewAuditLogger(logger))

	return &testEnv{
		clock:    clk,
		attempts: attempts,
		sessions: sessions,
		guard:    guard,
		registry: registry,
		auth:     authService,
	}
}

// storedSession reads the session behind token without modifying the store
func (e *testEnv) storedSession(token string) (*models.Session, bool) {
	var found *models.Session
	e.sessions.Update(token, func(current *models.Session) *models.Session {
		found = current
		return current
	})
	return found, found != nil
}
