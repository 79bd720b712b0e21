package leads

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for a key
	ErrSessionNotFound = errors.New("lead session not found")

	// ErrEmptyKey is returned when a session key is blank
	ErrEmptyKey = errors.New("session key is required")
)
