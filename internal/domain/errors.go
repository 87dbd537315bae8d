package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict indicates a conditional write lost against a concurrent change.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition indicates an order status change outside the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)
