package domain

import "errors"

// Repository and service errors. Stores wrap driver errors around these so
// handlers can map them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
)
