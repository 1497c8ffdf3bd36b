package tags

import "context"

// Repository defines the data access interface for the shared tag namespace.
// Tag creation uses INSERT OR IGNORE semantics so that concurrent
// tag-creating writes never race.
type Repository interface {
	// CreateTagIfNotExists inserts the tag, treating a unique violation as
	// success.
	CreateTagIfNotExists(ctx context.Context, tag Tag) error

	// AllTags returns every known tag.
	AllTags(ctx context.Context) ([]Tag, error)

	// CountTags returns the number of known tags.
	CountTags(ctx context.Context) (int, error)

	// MostPopularTags returns tags ordered by how many current place
	// revisions carry them, most popular first. One of the two bounded
	// long-running queries; limit must be positive.
	MostPopularTags(ctx context.Context, limit int) ([]TagFrequency, error)
}

// TagFrequency pairs a tag with its usage count.
type TagFrequency struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
