// Package storage defines the persistence interfaces and their shared errors.
package storage

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// record. Discoveries are immutable once recorded, so there is no upsert.
	ErrDuplicateKey = errors.New("duplicate key: discoveries are immutable once recorded")

	// ErrInvalidInput is returned when a store rejects its arguments before
	// touching the backend.
	ErrInvalidInput = errors.New("invalid input")
)
