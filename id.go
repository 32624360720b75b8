package colex

import (
	"github.com/google/uuid"
)

// NewRunID generates a UUIDv7 (time-ordered) identifier for an adapter-chain
// run. Run IDs tie together the log lines, metrics, and chain error of one
// resolution.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUIDv4 if NewV7 fails (extremely rare)
		id = uuid.New()
	}
	return id.String()
}

// IsValidRunID checks if a string is a valid UUID
func IsValidRunID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
