package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque record IDs for stores that do not assign their own.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return v.String(), nil
}
