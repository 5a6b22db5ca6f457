package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/fingdb/internal/handlers"
	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	var gotClient, gotUser, gotPass string
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			gotClient, gotUser, gotPass = clientID, username, password
			return &services.LoginResponse{AccessToken: "tok_123", TokenType: "bearer"}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Username: "admin",
		Password: "secret",
	})
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "tok_123", resp["access_token"])
	assert.Equal(t, "bearer", resp["token_type"])

	assert.Equal(t, "1.2.3.4", gotClient)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			return nil, &models.InvalidCredentialsError{AttemptsRemaining: 2}
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Username: "admin",
		Password: "wrong",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, 401, "invalid_credentials")
	assert.Equal(t, "Invalid credentials. 2 attempts remaining.", resp.Message)
	require.NotNil(t, resp.AttemptsRemaining)
	assert.Equal(t, 2, *resp.AttemptsRemaining)
}

func TestLogin_LockTransition(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			return nil, &models.RateLimitError{Remaining: 24 * time.Hour, Locked: true}
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Username: "admin",
		Password: "secret",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, 429, "rate_limit_exceeded")
	assert.Equal(t, "Too many failed attempts. Locked for 24 hours.", resp.Message)
	assert.Equal(t, "86400", w.Header().Get("Retry-After"))
}

func TestLogin_StillLocked(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			return nil, &models.RateLimitError{Remaining: 5*time.Hour + 42*time.Minute + 17*time.Second}
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Username: "admin",
		Password: "secret",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, 429, "rate_limit_exceeded")
	assert.Equal(t, "Too many failed attempts. Try again in 5h 42m", resp.Message)
	require.NotNil(t, resp.RetryAfterSeconds)
	assert.Equal(t, int64(5*3600+42*60+17), *resp.RetryAfterSeconds)
}

func TestLogin_InternalError(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			return nil, errors.New("entropy unavailable")
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Username: "admin",
		Password: "secret",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, 500, "internal_error")
	assert.NotContains(t, resp.Message, "entropy")
}

func TestLogin_InvalidBody(t *testing.T) {
	called := false
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
			called = true
			return nil, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("{not json"))

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
	assert.False(t, called, "malformed body must not reach the service")
}

func TestLogin_MissingFields(t *testing.T) {
	mockAuth := &handlers.MockAuthService{}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", map[string]string{"username": "admin"})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	resp := handlers.AssertErrorResponse(t, w, 400, "bad_request")
	assert.Contains(t, resp.Message, "Password")
}

func TestLogout_WithToken(t *testing.T) {
	var revoked, client string
	mockAuth := &handlers.MockAuthService{
		LogoutFunc: func(ctx context.Context, clientID, token string) { client, revoked = clientID, token },
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok_123")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	w := httptest.NewRecorder()
	handler.Logout(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "Logged out successfully", resp.Message)
	assert.Equal(t, "tok_123", revoked)
	assert.Equal(t, "203.0.113.9", client)
}

func TestLogout_WithoutToken(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	w := httptest.NewRecorder()
	handler.Logout(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "Logged out successfully", resp.Message)
}

func TestMe(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := handlers.WithPrincipal(httptest.NewRequest("GET", "/auth/me", nil), "admin")

	w := httptest.NewRecorder()
	handler.Me(w, req)

	var resp handlers.PrincipalResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "admin", resp.Username)
}

func TestMe_NoPrincipal(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := httptest.NewRequest("GET", "/auth/me", nil)

	w := httptest.NewRecorder()
	handler.Me(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestStatus(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		StatusFunc: func(ctx context.Context) *services.StatusResponse {
			return &services.StatusResponse{
				ActiveSessions:    2,
				LoginAttemptStats: models.LoginAttemptStats{TrackedClients: 3, LockedClients: 1},
			}
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest("GET", "/auth/status", nil))

	var resp map[string]int
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, map[string]int{"active_sessions": 2, "tracked_clients": 3, "locked_clients": 1}, resp)
}
