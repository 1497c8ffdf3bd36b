package ratings

import (
	"context"
	"time"
)

// Repository defines the data access interface for ratings.
type Repository interface {
	// CreateRating inserts a new rating.
	CreateRating(ctx context.Context, rating *Rating) error

	// GetRating returns a rating by id, archived or not.
	GetRating(ctx context.Context, id string) (*Rating, error)

	// GetRatings returns the ratings with the given ids.
	GetRatings(ctx context.Context, ids []string) ([]Rating, error)

	// RatingsForPlace returns the live ratings of a place.
	RatingsForPlace(ctx context.Context, placeID string) ([]Rating, error)

	// ArchiveRatings archives the given live ratings and cascades to their
	// live comments. Returns the number of ratings archived.
	ArchiveRatings(ctx context.Context, ids []string, archivedAt time.Time, archivedBy string) (int, error)

	// ArchiveRatingsOfPlaces archives all live ratings (and their comments)
	// of the given places. Returns the number of ratings archived.
	ArchiveRatingsOfPlaces(ctx context.Context, placeIDs []string, archivedAt time.Time, archivedBy string) (int, error)
}

// CommentRepository defines the data access interface for rating comments.
type CommentRepository interface {
	// CreateComment inserts a new comment.
	CreateComment(ctx context.Context, comment *Comment) error

	// CommentsForRating returns the live comments of a rating.
	CommentsForRating(ctx context.Context, ratingID string) ([]Comment, error)

	// ArchiveComments archives the given live comments. Returns the number
	// archived.
	ArchiveComments(ctx context.Context, ids []string, archivedAt time.Time, archivedBy string) (int, error)
}

// RatingWithComments pairs a rating with its live comments.
type RatingWithComments struct {
	Rating   Rating    `json:"rating"`
	Comments []Comment `json:"comments"`
}
