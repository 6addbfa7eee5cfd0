package domain

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string. It is safe for concurrent use.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
