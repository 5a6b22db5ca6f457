package services

import (
	"log/slog"
	"time"

	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/pkg/clock"
)

const (
	DefaultMaxAttempts     = 3
	DefaultLockoutDuration = 24 * time.Hour
)

// LoginAttemptStore defines the storage operations the guard needs.
// Update must run its closure atomically with respect to other calls for the same key.
type LoginAttemptStore interface {
	Get(clientID string) (*models.ClientAttemptRecord, bool)
	Update(clientID string, fn func(current *models.ClientAttemptRecord) *models.ClientAttemptRecord)
	Delete(clientID string)
	DeleteFunc(match func(record *models.ClientAttemptRecord) bool) int
	List() []models.ClientAttemptRecord
}

// GuardConfig holds lockout policy
type GuardConfig struct {
	MaxAttempts     int           // Failures tolerated before the next check locks the client
	LockoutDuration time.Duration // Lock length, and the window after which stale failures reset
}

// LoginGuard tracks consecutive login failures per client and applies lockouts
type LoginGuard struct {
	repo   LoginAttemptStore
	config GuardConfig
	clock  clock.Clock
	logger *slog.Logger
}

// NewLoginGuard creates a new LoginGuard. Zero config values fall back to the defaults.
func NewLoginGuard(repo LoginAttemptStore, config GuardConfig, clk clock.Clock, logger *slog.Logger) *LoginGuard {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = DefaultLockoutDuration
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &LoginGuard{
		repo:   repo,
		config: config,
		clock:  clk,
		logger: logger,
	}
}

// CheckRateLimit decides whether clientID may attempt a login now.
// Returns nil when allowed, or a *models.RateLimitError while locked out.
//
// A client that has reached MaxAttempts is locked by the first check that
// observes it, so the attempt that reaches the threshold is still allowed.
func (g *LoginGuard) CheckRateLimit(clientID string) error {
	now := g.clock.Now()

	var rateErr *models.RateLimitError
	g.repo.Update(clientID, func(rec *models.ClientAttemptRecord) *models.ClientAttemptRecord {
		if rec == nil {
			return nil
		}

		if rec.LockedUntil != nil {
			if rec.IsLocked(now) {
				rateErr = &models.RateLimitError{Remaining: rec.LockRemaining(now)}
				return rec
			}
			// Lock elapsed
			return nil
		}

		if rec.Attempts >= g.config.MaxAttempts {
			lockedUntil := now.Add(g.config.LockoutDuration)
			rec.LockedUntil = &lockedUntil
			rateErr = &models.RateLimitError{Remaining: g.config.LockoutDuration, Locked: true}
			return rec
		}

		if now.Sub(rec.FirstAttemptAt) > g.config.LockoutDuration {
			// Failure window expired below the threshold
			return nil
		}

		return rec
	})

	if rateErr != nil {
		if rateErr.Locked {
			g.logger.Warn("client locked out",
				slog.String("client_id", clientID),
				slog.Duration("lockout_duration", rateErr.Remaining))
		}
		return rateErr
	}
	return nil
}

// RecordFailure counts a failed login for clientID and returns the new consecutive failure count.
// It never sets a lock; that happens on the next CheckRateLimit.
func (g *LoginGuard) RecordFailure(clientID string) int {
	now := g.clock.Now()

	var attempts int
	g.repo.Update(clientID, func(rec *models.ClientAttemptRecord) *models.ClientAttemptRecord {
		if rec == nil {
			rec = &models.ClientAttemptRecord{ClientID: clientID, FirstAttemptAt: now}
		}
		rec.Attempts++
		attempts = rec.Attempts
		return rec
	})

	g.logger.Info("login failure recorded",
		slog.String("client_id", clientID),
		slog.Int("attempts", attempts))

	return attempts
}

// Attempts returns clientID's current consecutive failure count
func (g *LoginGuard) Attempts(clientID string) int {
	rec, ok := g.repo.Get(clientID)
	if !ok {
		return 0
	}
	return rec.Attempts
}

// RecordSuccess clears clientID's failure history
func (g *LoginGuard) RecordSuccess(clientID string) {
	g.repo.Delete(clientID)
}

// AttemptsRemaining returns how many more failures clientID may record before lockout, floored at zero
func (g *LoginGuard) AttemptsRemaining(attempts int) int {
	remaining := g.config.MaxAttempts - attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Sweep removes records the lazy checks would discard anyway: elapsed locks and
// expired windows below the threshold. Records at the threshold without a lock are kept
// so that the next check still locks them.
func (g *LoginGuard) Sweep() int {
	now := g.clock.Now()
	return g.repo.DeleteFunc(func(rec *models.ClientAttemptRecord) bool {
		if rec.LockedUntil != nil {
			return !rec.IsLocked(now)
		}
		return rec.Attempts < g.config.MaxAttempts && now.Sub(rec.FirstAttemptAt) > g.config.LockoutDuration
	})
}

// Stats counts tracked and currently locked clients
func (g *LoginGuard) Stats() models.LoginAttemptStats {
	now := g.clock.Now()
	records := g.repo.List()

	stats := models.LoginAttemptStats{TrackedClients: len(records)}
	for i := range records {
		if records[i].IsLocked(now) {
			stats.LockedClients++
		}
	}
	return stats
}
