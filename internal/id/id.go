package id

import "github.com/google/uuid"

// GenerateID returns a fresh random identifier for questions, choices and
// sessions. Imported banks keep whatever ids they already carry, so callers
// must treat ids as opaque strings.
func GenerateID() string {
	return uuid.NewString()
}
