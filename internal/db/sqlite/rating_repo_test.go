package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/ratings"
)

func testRating(id, placeID string) *ratings.Rating {
	return &ratings.Rating{
		ID:        id,
		PlaceID:   placeID,
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		Title:     "Alles bio",
		Value:     2,
		Context:   ratings.ContextDiversity,
	}
}

func testComment(id, ratingID string) *ratings.Comment {
	return &ratings.Comment{
		ID:        id,
		RatingID:  ratingID,
		CreatedAt: time.Unix(1700000100, 0).UTC(),
		Text:      "stimmt",
	}
}

func TestArchiveRatings_CascadesToComments(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepository(db)
	comments := NewRatingCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRating(ctx, testRating("r1", "p1")))
	require.NoError(t, comments.CreateComment(ctx, testComment("c1", "r1")))

	archivedAt := time.Unix(1700002000, 0).UTC()
	archived, err := repo.ArchiveRatings(ctx, []string{"r1"}, archivedAt, "scout@example.org")
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	got, err := repo.GetRating(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got.ArchivedAt)
	assert.Equal(t, archivedAt, *got.ArchivedAt)

	live, err := comments.CommentsForRating(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, live)

	// Archiving is idempotent; rows stay in place.
	archived, err = repo.ArchiveRatings(ctx, []string{"r1"}, archivedAt, "scout@example.org")
	require.NoError(t, err)
	assert.Equal(t, 0, archived)
}

func TestArchiveRatingsOfPlaces_LeavesOtherPlacesAlone(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepository(db)
	comments := NewRatingCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRating(ctx, testRating("r1", "p1")))
	require.NoError(t, repo.CreateRating(ctx, testRating("r2", "p1")))
	require.NoError(t, repo.CreateRating(ctx, testRating("r3", "p2")))
	require.NoError(t, comments.CreateComment(ctx, testComment("c1", "r1")))
	require.NoError(t, comments.CreateComment(ctx, testComment("c3", "r3")))

	archivedAt := time.Unix(1700002000, 0).UTC()
	archived, err := repo.ArchiveRatingsOfPlaces(ctx, []string{"p1"}, archivedAt, "scout@example.org")
	require.NoError(t, err)
	assert.Equal(t, 2, archived)

	gone, err := repo.RatingsForPlace(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	still, err := repo.RatingsForPlace(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, still, 1)
	assert.Equal(t, "r3", still[0].ID)

	archivedComments, err := comments.CommentsForRating(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, archivedComments)

	liveComments, err := comments.CommentsForRating(ctx, "r3")
	require.NoError(t, err)
	assert.Len(t, liveComments, 1)
}

func TestArchiveComments_OnlyLiveRowsCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepository(db)
	comments := NewRatingCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateRating(ctx, testRating("r1", "p1")))
	require.NoError(t, comments.CreateComment(ctx, testComment("c1", "r1")))

	archivedAt := time.Unix(1700002000, 0).UTC()
	archived, err := comments.ArchiveComments(ctx, []string{"c1"}, archivedAt, "scout@example.org")
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	archived, err = comments.ArchiveComments(ctx, []string{"c1"}, archivedAt, "scout@example.org")
	require.NoError(t, err)
	assert.Equal(t, 0, archived)
}
