package auth

import (
	"net/http"

	pkgauth "github.com/BradenHooton/fingdb/pkg/auth"
	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
)

// APIKeyHeader carries the static API key
const APIKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests whose X-API-Key header does not equal apiKey.
// The comparison is constant time.
func RequireAPIKey(apiKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(APIKeyHeader)
			if supplied == "" || !pkgauth.ConstantTimeEqual(apiKey, supplied) {
				pkghttp.WriteUnauthorized(w, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
