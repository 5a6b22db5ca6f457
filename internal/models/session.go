package models

import "time"

// Session is the server-side state behind an opaque bearer token.
// ID is a non-secret handle that is safe to log; the token itself never is.
type Session struct {
	ID        string
	Principal string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session's validity window has passed
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
