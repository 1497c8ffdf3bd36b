package events

import "errors"

var (
	// ErrNotFound indicates the requested event doesn't exist or, for the
	// tag-scoped delete, did not match the tag filter.
	ErrNotFound = errors.New("event not found")

	// ErrEndBeforeStart indicates an event ending before it starts.
	ErrEndBeforeStart = errors.New("event ends before it starts")
)
