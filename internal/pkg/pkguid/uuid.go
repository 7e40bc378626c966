package pkguid

import "github.com/google/uuid"

// UUID generates RFC 9562 version 7 UUID strings, falling back to version 4
// when the time-ordered source fails.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
