package repositories

import (
	"sync"

	"github.com/BradenHooton/fingdb/internal/models"
)

// LoginAttemptRepository keeps per-client attempt records in process memory.
// A single mutex serializes every operation, so Update closures run atomically.
type LoginAttemptRepository struct {
	mu      sync.Mutex
	records map[string]models.ClientAttemptRecord
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository() *LoginAttemptRepository {
	return &LoginAttemptRepository{
		records: make(map[string]models.ClientAttemptRecord),
	}
}

// Get returns a copy of the client's record
func (r *LoginAttemptRepository) Get(clientID string) (*models.ClientAttemptRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[clientID]
	if !ok {
		return nil, false
	}
	return copyAttemptRecord(rec), true
}

// Delete removes the client's record if present
func (r *LoginAttemptRepository) Delete(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, clientID)
}

// Update runs fn with a copy of the current record (nil when absent) while holding the lock.
// A nil result deletes the record; anything else is stored under clientID.
func (r *LoginAttemptRepository) Update(clientID string, fn func(current *models.ClientAttemptRecord) *models.ClientAttemptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *models.ClientAttemptRecord
	if rec, ok := r.records[clientID]; ok {
		current = copyAttemptRecord(rec)
	}

	next := fn(current)
	if next == nil {
		delete(r.records, clientID)
		return
	}

	stored := *copyAttemptRecord(*next)
	stored.ClientID = clientID
	r.records[clientID] = stored
}

// DeleteFunc removes every record for which match returns true and reports how many were removed
func (r *LoginAttemptRepository) DeleteFunc(match func(record *models.ClientAttemptRecord) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, rec := range r.records {
		if match(copyAttemptRecord(rec)) {
			delete(r.records, id)
			removed++
		}
	}
	return removed
}

// List returns copies of all records
func (r *LoginAttemptRepository) List() []models.ClientAttemptRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ClientAttemptRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *copyAttemptRecord(rec))
	}
	return out
}

func copyAttemptRecord(rec models.ClientAttemptRecord) *models.ClientAttemptRecord {
	if rec.LockedUntil != nil {
		lockedUntil := *rec.LockedUntil
		rec.LockedUntil = &lockedUntil
	}
	return &rec
}
