package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds request-rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultLoginRateLimit returns the burst limit for the login endpoint (20 requests per minute).
// It sits in front of the failure lockout and only caps raw request volume.
func DefaultLoginRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
	}
}

// RateLimitByClient limits requests per client identifier, keyed the same way as the login lockout.
// A non-positive limit falls back to DefaultLoginRateLimit; httprate would otherwise reject everything.
func RateLimitByClient(config RateLimitConfig) func(next http.Handler) http.Handler {
	if config.RequestsPerMinute <= 0 {
		config = DefaultLoginRateLimit()
	}

	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ClientID(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
		}),
	)
}
