package search

import (
	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
)

// IndexedPlace is the denormalized search index document of one place. It
// carries everything result lists need so that queries never touch the
// database.
type IndexedPlace struct {
	ID          string             `json:"id"`
	Pos         geo.Point          `json:"pos"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	Ratings     ratings.AvgRatings `json:"ratings"`
}

// Query filters the place index. The bounding box is required; text and tags
// are optional refinements.
type Query struct {
	Bbox geo.Bbox
	Text string
	Tags []string
}

// Indexer abstracts the full-text place index. Writes become visible to
// queries after Flush.
type Indexer interface {
	// AddOrUpdatePlace upserts the index document of a place.
	AddOrUpdatePlace(place *places.Place, avg ratings.AvgRatings) error

	// RemovePlaceByID drops a place from the index, e.g. after it was
	// rejected or archived.
	RemovePlaceByID(id string) error

	// Flush makes pending writes visible to queries.
	Flush() error

	// QueryPlaces returns up to limit matching places, ordered by average
	// rating, best first.
	QueryPlaces(q Query, limit int) ([]IndexedPlace, error)
}
