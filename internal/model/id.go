package model

import "github.com/google/uuid"

// NewID returns a new client-generated identifier. The identifier is a version 7 UUID,
// which combines a millisecond timestamp with random bits.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
