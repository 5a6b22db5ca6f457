package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/fingdb/internal/auth"
	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/internal/services"
	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithPrincipal adds an authenticated principal to the request context for testing
func WithPrincipal(req *http.Request, principal string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.PrincipalContextKey, principal)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error)
	LogoutFunc func(ctx context.Context, clientID, token string)
	StatusFunc func(ctx context.Context) *services.StatusResponse
}

func (m *MockAuthService) Login(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error) {
	if m.LoginFunc == nil {
		return nil, &models.InvalidCredentialsError{}
	}
	return m.LoginFunc(ctx, clientID, username, password)
}

func (m *MockAuthService) Logout(ctx context.Context, clientID, token string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, clientID, token)
	}
}

func (m *MockAuthService) Status(ctx context.Context) *services.StatusResponse {
	if m.StatusFunc == nil {
		return &services.StatusResponse{}
	}
	return m.StatusFunc(ctx)
}
