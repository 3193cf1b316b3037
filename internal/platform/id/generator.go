package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for run correlation.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	return v.String(), nil
}

// Static always returns the same ID.
type Static string

func (s Static) NewID() (string, error) {
	return string(s), nil
}
