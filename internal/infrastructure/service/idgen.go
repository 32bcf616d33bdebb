package service

import (
	"github.com/google/uuid"
)

// UUIDGenerator generates uuid v4 identifiers for users, usage logs, and
// notifications.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// GenerateID returns a new uuid string.
func (g *UUIDGenerator) GenerateID() string {
	return uuid.NewString()
}
