package core

import "errors"

var (
	// ErrNotFound is returned when a task, workflow or other registry entry
	// does not exist for the supplied id.
	ErrNotFound = errors.New("not found")
)
