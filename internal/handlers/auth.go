package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BradenHooton/fingdb/internal/auth"
	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/internal/services"
	pkghttp "github.com/BradenHooton/fingdb/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, clientID, username, password string) (*services.LoginResponse, error)
	Logout(ctx context.Context, clientID, token string)
	Status(ctx context.Context) *services.StatusResponse
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=1024"`
}

// MessageResponse is a plain confirmation body
type MessageResponse struct {
	Message string `json:"message"`
}

// PrincipalResponse identifies the authenticated principal
type PrincipalResponse struct {
	Username string `json:"username"`
}

// Login handles principal login
// @Summary Login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	clientID := pkghttp.ClientID(r)

	resp, err := h.service.Login(r.Context(), clientID, req.Username, req.Password)
	if err != nil {
		var rateErr *models.RateLimitError
		var credErr *models.InvalidCredentialsError
		switch {
		case errors.As(err, &rateErr):
			pkghttp.WriteLockedOut(w, lockoutMessage(rateErr), rateErr.Remaining)
		case errors.As(err, &credErr):
			pkghttp.WriteInvalidCredentials(w,
				fmt.Sprintf("Invalid credentials. %d attempts remaining.", credErr.AttemptsRemaining),
				credErr.AttemptsRemaining)
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Logout revokes the bearer token if one is supplied. Always succeeds.
// @Summary Logout
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), pkghttp.ClientID(r), pkghttp.BearerToken(r))

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the principal attached by auth.RequireSession
// @Summary Current principal
// @Produce json
// @Success 200 {object} PrincipalResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipalFromContext(r)
	if principal == "" {
		pkghttp.WriteBearerUnauthorized(w, auth.NotAuthenticatedMessage)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, PrincipalResponse{Username: principal})
}

// Status reports session and lockout counts (API key protected)
// @Summary Auth status
// @Produce json
// @Success 200 {object} services.StatusResponse
// @Router /auth/status [get]
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.Status(r.Context()))
}

// lockoutMessage renders the user-facing 429 text
func lockoutMessage(e *models.RateLimitError) string {
	if e.Locked {
		return fmt.Sprintf("Too many failed attempts. Locked for %s.", describeDuration(e.Remaining))
	}

	remaining := int64(e.Remaining / time.Second)
	return fmt.Sprintf("Too many failed attempts. Try again in %dh %dm", remaining/3600, (remaining%3600)/60)
}

// describeDuration renders whole hours or minutes, e.g. "24 hours", "15 minutes"
func describeDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int64(d/time.Hour), "hour")
	}
	if d >= time.Minute && d%time.Minute == 0 {
		return plural(int64(d/time.Minute), "minute")
	}
	return d.String()
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
