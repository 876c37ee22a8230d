package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write,
	// notably a second session materialized for the same remote session id.
	ErrDuplicate = errors.New("persistence: duplicate record")
)
