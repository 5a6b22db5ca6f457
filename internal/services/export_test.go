package services

import "io"

// SetRandomSource replaces the registry's entropy source
func SetRandomSource(r *SessionRegistry, src io.Reader) {
	r.random = src
}
