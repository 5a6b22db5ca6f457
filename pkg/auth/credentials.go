package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single configured principal's username and password.
// Password may be plain text or a bcrypt hash ("$2a$", "$2b$", "$2y$").
type Credentials struct {
	Username string
	Password string
}

// IsBcryptHash reports whether s looks like a bcrypt hash
func IsBcryptHash(s string) bool {
	if !strings.HasPrefix(s, "$2a$") && !strings.HasPrefix(s, "$2b$") && !strings.HasPrefix(s, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Matches compares the supplied username and password without leaking
// how much of either matched. Both comparisons always run.
func (c Credentials) Matches(username, password string) bool {
	userOK := constantTimeEqual(c.Username, username)

	var passOK bool
	if IsBcryptHash(c.Password) {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
	} else {
		passOK = constantTimeEqual(c.Password, password)
	}

	return userOK && passOK
}

// constantTimeEqual hashes both sides first so the comparison length is fixed
func constantTimeEqual(expected, supplied string) bool {
	e := sha256.Sum256([]byte(expected))
	s := sha256.Sum256([]byte(supplied))
	return subtle.ConstantTimeCompare(e[:], s[:]) == 1
}

// ConstantTimeEqual exposes the fixed-length comparison for static secrets such as API keys
func ConstantTimeEqual(expected, supplied string) bool {
	return constantTimeEqual(expected, supplied)
}
