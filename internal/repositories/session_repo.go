package repositories

import (
	"sync"

	"github.com/BradenHooton/fingdb/internal/models"
)

// SessionRepository maps opaque tokens to sessions in process memory
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]models.Session),
	}
}

// Create stores a session under token. Returns models.ErrConflict if the token is taken.
func (r *SessionRepository) Create(token string, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[token]; exists {
		return models.ErrConflict
	}
	r.sessions[token] = *session
	return nil
}

// Update runs fn with a copy of the session (nil when absent) while holding the lock.
// A nil result deletes the entry.
func (r *SessionRepository) Update(token string, fn func(current *models.Session) *models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *models.Session
	if s, ok := r.sessions[token]; ok {
		current = &s
	}

	next := fn(current)
	if next == nil {
		delete(r.sessions, token)
		return
	}
	r.sessions[token] = *next
}

// DeleteFunc removes every session for which match returns true
func (r *SessionRepository) DeleteFunc(match func(session *models.Session) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, s := range r.sessions {
		if match(&s) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// CountFunc returns the number of sessions for which match returns true
func (r *SessionRepository) CountFunc(match func(session *models.Session) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.sessions {
		if match(&s) {
			n++
		}
	}
	return n
}
