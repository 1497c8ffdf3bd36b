package ratings

import "errors"

var (
	// ErrNotFound indicates the requested rating or comment doesn't exist.
	ErrNotFound = errors.New("rating not found")

	// ErrValue indicates a rating value outside [-1, 2].
	ErrValue = errors.New("rating value out of range")

	// ErrContext indicates an unknown rating context.
	ErrContext = errors.New("invalid rating context")
)
