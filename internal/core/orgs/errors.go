package orgs

import "errors"

var (
	// ErrNotFound indicates no organization matches the given token or id.
	ErrNotFound = errors.New("organization not found")

	// ErrOwnedTag indicates the edit touches a tag owned by an organization
	// that did not authorize the change.
	ErrOwnedTag = errors.New("tag is owned by an organization")
)
