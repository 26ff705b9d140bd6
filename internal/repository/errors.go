package repository

import "errors"

// Common repository errors that can be checked with errors.Is()
var (
	// ErrNotFound is returned when no row matches the requested ID
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity is missing required fields
	ErrInvalidEntity = errors.New("invalid entity")
)
