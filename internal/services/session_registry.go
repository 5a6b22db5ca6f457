package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/pkg/clock"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL = 24 * time.Hour

	// tokenBytes is the raw entropy per token (256 bits)
	tokenBytes = 32

	// maxIssueRetries bounds regeneration when a token collides with a stored one
	maxIssueRetries = 3
)

// SessionStore defines the storage operations the registry needs
type SessionStore interface {
	Create(token string, session *models.Session) error
	Update(token string, fn func(current *models.Session) *models.Session)
	DeleteFunc(match func(session *models.Session) bool) int
	CountFunc(match func(session *models.Session) bool) int
}

// SessionRegistry issues, validates and revokes opaque session tokens.
// Sessions last a fixed TTL from issuance and are never renewed.
type SessionRegistry struct {
	repo   SessionStore
	ttl    time.Duration
	clock  clock.Clock
	random io.Reader
	logger *slog.Logger
}

// NewSessionRegistry creates a new SessionRegistry. A non-positive ttl uses DefaultSessionTTL.
func NewSessionRegistry(repo SessionStore, ttl time.Duration, clk clock.Clock, logger *slog.Logger) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &SessionRegistry{
		repo:   repo,
		ttl:    ttl,
		clock:  clk,
		random: rand.Reader,
		logger: logger,
	}
}

// IssueToken mints a new token for principal and stores its session.
// The returned session is a copy; its ID is safe to log, the token is not.
func (r *SessionRegistry) IssueToken(principal string) (string, *models.Session, error) {
	for i := 0; i < maxIssueRetries; i++ {
		token, err := r.generateToken()
		if err != nil {
			return "", nil, err
		}

		now := r.clock.Now()
		session := &models.Session{
			ID:        uuid.New().String(),
			Principal: principal,
			IssuedAt:  now,
			ExpiresAt: now.Add(r.ttl),
		}

		err = r.repo.Create(token, session)
		if errors.Is(err, models.ErrConflict) {
			r.logger.Warn("session token collision, regenerating")
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to store session: %w", err)
		}

		r.logger.Info("session issued",
			slog.String("session_id", session.ID),
			slog.String("principal", principal),
			slog.String("token_fp", pkglogger.TokenFingerprint(token)),
			slog.Time("expires_at", session.ExpiresAt))

		return token, session, nil
	}

	return "", nil, fmt.Errorf("failed to issue session token after %d attempts", maxIssueRetries)
}

// ValidateToken returns the token's principal, or false when the token is unknown or expired.
// Expired sessions are deleted here rather than by a background sweep.
func (r *SessionRegistry) ValidateToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	now := r.clock.Now()

	var principal, expiredID string
	var found bool
	r.repo.Update(token, func(s *models.Session) *models.Session {
		if s == nil {
			return nil
		}
		if s.Expired(now) {
			expiredID = s.ID
			return nil
		}
		principal, found = s.Principal, true
		return s
	})

	if expiredID != "" {
		r.logger.Info("session expired", slog.String("session_id", expiredID))
	}

	return principal, found
}

// RevokeToken deletes the token's session. Unknown or already revoked tokens are ignored.
func (r *SessionRegistry) RevokeToken(token string) {
	if token == "" {
		return
	}

	var revokedID string
	r.repo.Update(token, func(s *models.Session) *models.Session {
		if s != nil {
			revokedID = s.ID
		}
		return nil
	})

	if revokedID != "" {
		r.logger.Info("session revoked", slog.String("session_id", revokedID))
	}
}

// Sweep deletes every expired session and returns how many were removed
func (r *SessionRegistry) Sweep() int {
	now := r.clock.Now()
	return r.repo.DeleteFunc(func(s *models.Session) bool {
		return s.Expired(now)
	})
}

// ActiveSessions counts sessions that have not expired
func (r *SessionRegistry) ActiveSessions() int {
	now := r.clock.Now()
	return r.repo.CountFunc(func(s *models.Session) bool {
		return !s.Expired(now)
	})
}

// generateToken returns 256 random bits encoded as URL-safe base64 without padding
func (r *SessionRegistry) generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r.random, b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
