package models

import "time"

// ClientAttemptRecord tracks consecutive failed logins for one client identifier
type ClientAttemptRecord struct {
	ClientID       string
	Attempts       int        // Consecutive failures in the current window
	FirstAttemptAt time.Time  // Oldest failure in the current window
	LockedUntil    *time.Time // Set only while the client is locked out
}

// IsLocked reports whether the record carries a lock that has not yet elapsed
func (r *ClientAttemptRecord) IsLocked(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// LockRemaining returns the time left on the lock, or zero
func (r *ClientAttemptRecord) LockRemaining(now time.Time) time.Duration {
	if !r.IsLocked(now) {
		return 0
	}
	return r.LockedUntil.Sub(now)
}

// LoginAttemptStats aggregates attempt-record counts for the status endpoint
type LoginAttemptStats struct {
	TrackedClients int `json:"tracked_clients"`
	LockedClients  int `json:"locked_clients"`
}
