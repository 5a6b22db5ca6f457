package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/BradenHooton/fingdb/internal/models"
	pkgauth "github.com/BradenHooton/fingdb/pkg/auth"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
)

// TokenTypeBearer is the token_type returned on login
const TokenTypeBearer = "bearer"

// AuthService composes the login guard and session registry into the login flow
type AuthService struct {
	guard       *LoginGuard
	sessions    *SessionRegistry
	credentials pkgauth.Credentials
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(guard *LoginGuard, sessions *SessionRegistry, credentials pkgauth.Credentials, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		guard:       guard,
		sessions:    sessions,
		credentials: credentials,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResponse represents the response from a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// StatusResponse summarizes in-memory auth state
type StatusResponse struct {
	ActiveSessions int `json:"active_sessions"`
	models.LoginAttemptStats
}

// Login checks the client's lockout state, then the supplied credentials.
// Errors are *models.RateLimitError or *models.InvalidCredentialsError, or a wrapped
// internal error if a token could not be minted.
func (s *AuthService) Login(ctx context.Context, clientID, username, password string) (*LoginResponse, error) {
	if err := s.guard.CheckRateLimit(clientID); err != nil {
		var rateErr *models.RateLimitError
		if errors.As(err, &rateErr) {
			eventType := pkglogger.EventLoginThrottled
			if rateErr.Locked {
				eventType = pkglogger.EventLoginLocked
			}
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     eventType,
				ClientID:      clientID,
				FailureReason: "rate_limited",
				Success:       false,
				Metadata: map[string]string{
					"attempts":      strconv.Itoa(s.guard.Attempts(clientID)),
					"retry_after_s": strconv.FormatInt(int64(rateErr.Remaining.Seconds()), 10),
				},
			})
		}
		return nil, err
	}

	if !s.credentials.Matches(username, password) {
		attempts := s.guard.RecordFailure(clientID)
		remaining := s.guard.AttemptsRemaining(attempts)

		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginFailed,
			ClientID:      clientID,
			FailureReason: "invalid_credentials",
			Success:       false,
			Metadata:      map[string]string{"attempts": strconv.Itoa(attempts)},
		})

		return nil, &models.InvalidCredentialsError{AttemptsRemaining: remaining}
	}

	s.guard.RecordSuccess(clientID)

	token, session, err := s.sessions.IssueToken(s.credentials.Username)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue session token", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrInternalServer, err)
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLoginSuccess,
		ClientID:  clientID,
		Principal: s.credentials.Username,
		SessionID: session.ID,
		Success:   true,
		Metadata:  map[string]string{"token_fp": pkglogger.TokenFingerprint(token)},
	})

	return &LoginResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
	}, nil
}

// Authenticate resolves a bearer token to its principal.
// A missing token and an invalid or expired one both yield models.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	principal, ok := s.sessions.ValidateToken(token)
	if !ok {
		return "", models.ErrUnauthenticated
	}
	return principal, nil
}

// Logout revokes token if one was supplied. It always succeeds.
func (s *AuthService) Logout(ctx context.Context, clientID, token string) {
	if token == "" {
		return
	}

	s.sessions.RevokeToken(token)
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventLogout,
		ClientID:  clientID,
		Success:   true,
		Metadata:  map[string]string{"token_fp": pkglogger.TokenFingerprint(token)},
	})
}

// Status reports session and lockout counts
func (s *AuthService) Status(ctx context.Context) *StatusResponse {
	return &StatusResponse{
		ActiveSessions:    s.sessions.ActiveSessions(),
		LoginAttemptStats: s.guard.Stats(),
	}
}
