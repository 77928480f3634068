package utils

import "github.com/google/uuid"

// NewID returns a unique server-assigned connection identifier.
func NewID() string {
	return uuid.NewString()
}
