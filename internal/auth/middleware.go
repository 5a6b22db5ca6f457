package auth

import (
	"context"
	"net/http"

	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
	pkglogger "github.com/BradenHooton/fingdb/pkg/logger"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// PrincipalContextKey is the key for storing the authenticated principal in context
	PrincipalContextKey contextKey = "principal"

	// NotAuthenticatedMessage is returned for every bearer failure so callers
	// cannot tell a missing token from an invalid or expired one
	NotAuthenticatedMessage = "Not authenticated"
)

// Authenticator maps a bearer token to a principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireSession validates the bearer token and injects the principal into context.
// Rejections are audit-logged; the reason is recorded there but never returned to the caller.
func RequireSession(authenticator Authenticator, auditLogger *pkglogger.AuditLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := pkghttp.BearerToken(r)

			principal, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				reason := "invalid_token"
				if token == "" {
					reason = "missing_token"
				}
				auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
					EventType:     pkglogger.EventAuthRejected,
					ClientID:      pkghttp.ClientID(r),
					UserAgent:     r.UserAgent(),
					Success:       false,
					FailureReason: reason,
					Metadata:      map[string]string{"path": r.URL.Path},
				})

				pkghttp.WriteBearerUnauthorized(w, NotAuthenticatedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext returns the principal set by RequireSession, or ""
func GetPrincipalFromContext(r *http.Request) string {
	principal, ok := r.Context().Value(PrincipalContextKey).(string)
	if !ok {
		return ""
	}
	return principal
}
