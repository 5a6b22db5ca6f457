package services_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/fingdb/internal/models"
	"github.com/BradenHooton/fingdb/internal/repositories"
	"github.com/BradenHooton/fingdb/internal/services"
	"github.com/BradenHooton/fingdb/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	token, _, err := env.registry.IssueToken("admin")
	require.NoError(t, err)

	principal, ok := env.registry.ValidateToken(token)
	assert.True(t, ok)
	assert.Equal(t, "admin", principal)
}

func TestSessionRegistry_TokenFormat(t *testing.T) {
	env := newTestEnv(t)

	token, _, err := env.registry.IssueToken("admin")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err, "token must be URL-safe base64")
	assert.Len(t, raw, 32, "token must carry 256 bits")
	assert.False(t, strings.ContainsAny(token, "+/="))
}

func TestSessionRegistry_TokensAreUnique(t *testing.T) {
	env := newTestEnv(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, _, err := env.registry.IssueToken("admin")
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
	assert.Equal(t, 200, env.registry.ActiveSessions())
}

func TestSessionRegistry_SessionFields(t *testing.T) {
	env := newTestEnv(t)

	token, issued, err := env.registry.IssueToken("admin")
	require.NoError(t, err)

	s, ok := env.storedSession(token)
	require.True(t, ok)
	assert.Equal(t, issued.ID, s.ID)
	assert.Equal(t, "admin", s.Principal)
	assert.Equal(t, testEpoch, s.IssuedAt)
	assert.Equal(t, testEpoch.Add(24*time.Hour), s.ExpiresAt)
	assert.Len(t, s.ID, 36, "session id is a uuid")
}

func TestSessionRegistry_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	principal, ok := env.registry.ValidateToken("not-a-token")
	assert.False(t, ok)
	assert.Empty(t, principal)

	_, ok = env.registry.ValidateToken("")
	assert.False(t, ok)
}

func TestSessionRegistry_ValidAtExactExpiry(t *testing.T) {
	env := newTestEnv(t)
	token, _, _ := env.registry.IssueToken("admin")

	env.clock.Advance(24 * time.Hour)

	_, ok := env.registry.ValidateToken(token)
	assert.True(t, ok, "token expires only once the window has passed")
}

func TestSessionRegistry_ExpiredTokenIsDeleted(t *testing.T) {
	env := newTestEnv(t)
	token, _, _ := env.registry.IssueToken("admin")

	env.clock.Advance(24*time.Hour + time.Second)

	_, ok := env.registry.ValidateToken(token)
	assert.False(t, ok)

	_, stored := env.storedSession(token)
	assert.False(t, stored, "expired session must be deleted on validation")

	_, ok = env.registry.ValidateToken(token)
	assert.False(t, ok)
}

func TestSessionRegistry_RevokeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	token, _, _ := env.registry.IssueToken("admin")
	other, _, _ := env.registry.IssueToken("admin")

	env.registry.RevokeToken(token)
	_, ok := env.registry.ValidateToken(token)
	assert.False(t, ok)

	env.registry.RevokeToken(token)
	env.registry.RevokeToken("never-issued")
	env.registry.RevokeToken("")

	_, ok = env.registry.ValidateToken(other)
	assert.True(t, ok, "revoking one token must not affect another")
	assert.Equal(t, 1, env.registry.ActiveSessions())
}

func TestSessionRegistry_Sweep(t *testing.T) {
	env := newTestEnv(t)
	old, _, _ := env.registry.IssueToken("admin")

	env.clock.Advance(23 * time.Hour)
	fresh, _, _ := env.registry.IssueToken("admin")

	env.clock.Advance(2 * time.Hour)

	assert.Equal(t, 1, env.registry.ActiveSessions())
	assert.Equal(t, 1, env.registry.Sweep())

	_, ok := env.storedSession(old)
	assert.False(t, ok)
	_, ok = env.registry.ValidateToken(fresh)
	assert.True(t, ok)
}

func TestSessionRegistry_CustomTTL(t *testing.T) {
	clk := clock.NewMock(testEpoch)
	registry := services.NewSessionRegistry(repositories.NewSessionRepository(), time.Hour, clk, discardLogger())

	token, _, err := registry.IssueToken("admin")
	require.NoError(t, err)

	clk.Advance(time.Hour + time.Millisecond)
	_, ok := registry.ValidateToken(token)
	assert.False(t, ok)
}

// conflictStore rejects the first n creates to exercise collision handling
type conflictStore struct {
	*repositories.SessionRepository
	conflicts int
}

func (s *conflictStore) Create(token string, session *models.Session) error {
	if s.conflicts > 0 {
		s.conflicts--
		return models.ErrConflict
	}
	return s.SessionRepository.Create(token, session)
}

func TestSessionRegistry_RetriesOnCollision(t *testing.T) {
	store := &conflictStore{SessionRepository: repositories.NewSessionRepository(), conflicts: 2}
	registry := services.NewSessionRegistry(store, 0, clock.NewMock(testEpoch), discardLogger())

	token, _, err := registry.IssueToken("admin")
	require.NoError(t, err)

	_, ok := registry.ValidateToken(token)
	assert.True(t, ok)
}

func TestSessionRegistry_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := &conflictStore{SessionRepository: repositories.NewSessionRepository(), conflicts: 10}
	registry := services.NewSessionRegistry(store, 0, clock.NewMock(testEpoch), discardLogger())

	_, _, err := registry.IssueToken("admin")
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrConflict))
}
