package places

import "errors"

var (
	// ErrNotFound indicates the requested place doesn't exist.
	ErrNotFound = errors.New("place not found")

	// ErrInvalidVersion indicates an update based on a stale revision. The
	// only valid next revision for a place at rev N is N+1; concurrent
	// writers racing produce exactly one success and the loser sees this.
	ErrInvalidVersion = errors.New("invalid place revision")
)
