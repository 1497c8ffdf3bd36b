package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Placemap/internal/core/ratings"
)

type sqliteRatingRepo struct {
	db *sql.DB
}

// NewRatingRepository creates a new SQLite rating repository.
func NewRatingRepository(db *sql.DB) ratings.Repository {
	return &sqliteRatingRepo{db: db}
}

func (r *sqliteRatingRepo) CreateRating(ctx context.Context, rating *ratings.Rating) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (id, place_id, created_at, title, value, context, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rating.ID, rating.PlaceID, rating.CreatedAt.Unix(),
		rating.Title, rating.Value, string(rating.Context), rating.Source)
	if err != nil {
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	return nil
}

func (r *sqliteRatingRepo) GetRating(ctx context.Context, id string) (*ratings.Rating, error) {
	rating, err := scanRating(r.db.QueryRowContext(ctx, `
		SELECT id, place_id, created_at, archived_at, title, value, context, source
		FROM ratings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ratings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

func (r *sqliteRatingRepo) GetRatings(ctx context.Context, ids []string) ([]ratings.Rating, error) {
	if len(ids) == 0 {
		return []ratings.Rating{}, nil
	}
	query := `
		SELECT id, place_id, created_at, archived_at, title, value, context, source
		FROM ratings WHERE id IN (` + placeholders(len(ids)) + `)
		ORDER BY created_at`
	return r.queryRatings(ctx, query, stringArgs(ids)...)
}

func (r *sqliteRatingRepo) RatingsForPlace(ctx context.Context, placeID string) ([]ratings.Rating, error) {
	return r.queryRatings(ctx, `
		SELECT id, place_id, created_at, archived_at, title, value, context, source
		FROM ratings
		WHERE place_id = ? AND archived_at IS NULL
		ORDER BY created_at`, placeID)
}

func (r *sqliteRatingRepo) queryRatings(ctx context.Context, query string, args ...interface{}) ([]ratings.Rating, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer closeRows(rows)

	var result []ratings.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		result = append(result, *rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return result, nil
}

// ArchiveRatings archives the listed live ratings and cascades to their live
// comments in the same transaction.
func (r *sqliteRatingRepo) ArchiveRatings(ctx context.Context, ids []string, archivedAt time.Time, archivedBy string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.archive(ctx,
		`UPDATE ratings SET archived_at = ?, archived_by = ?
		 WHERE id IN (`+placeholders(len(ids))+`) AND archived_at IS NULL`,
		`UPDATE comments SET archived_at = ?, archived_by = ?
		 WHERE rating_id IN (`+placeholders(len(ids))+`) AND archived_at IS NULL`,
		ids, archivedAt, archivedBy)
}

// ArchiveRatingsOfPlaces archives every live rating of the listed places,
// cascading to comments.
func (r *sqliteRatingRepo) ArchiveRatingsOfPlaces(ctx context.Context, placeIDs []string, archivedAt time.Time, archivedBy string) (int, error) {
	if len(placeIDs) == 0 {
		return 0, nil
	}
	return r.archive(ctx,
		`UPDATE ratings SET archived_at = ?, archived_by = ?
		 WHERE place_id IN (`+placeholders(len(placeIDs))+`) AND archived_at IS NULL`,
		`UPDATE comments SET archived_at = ?, archived_by = ?
		 WHERE rating_id IN (
			SELECT id FROM ratings WHERE place_id IN (`+placeholders(len(placeIDs))+`)
		 ) AND archived_at IS NULL`,
		placeIDs, archivedAt, archivedBy)
}

func (r *sqliteRatingRepo) archive(ctx context.Context, ratingQuery, commentQuery string, ids []string, archivedAt time.Time, archivedBy string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	args := append([]interface{}{archivedAt.Unix(), archivedBy}, stringArgs(ids)...)

	// Comments first: the rating update flips archived_at, which the
	// comment cascade filters on.
	if _, err := tx.ExecContext(ctx, commentQuery, args...); err != nil {
		return 0, fmt.Errorf("failed to archive comments: %w", err)
	}
	result, err := tx.ExecContext(ctx, ratingQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to archive ratings: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check archive result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}
	return int(affected), nil
}

func scanRating(row rowScanner) (*ratings.Rating, error) {
	var rating ratings.Rating
	var createdAt int64
	var archivedAt sql.NullInt64
	var context string
	err := row.Scan(&rating.ID, &rating.PlaceID, &createdAt, &archivedAt,
		&rating.Title, &rating.Value, &context, &rating.Source)
	if err != nil {
		return nil, err
	}
	rating.CreatedAt = time.Unix(createdAt, 0).UTC()
	if archivedAt.Valid {
		t := time.Unix(archivedAt.Int64, 0).UTC()
		rating.ArchivedAt = &t
	}
	rating.Context = ratings.RatingContext(context)
	return &rating, nil
}

type sqliteCommentRepo struct {
	db *sql.DB
}

// NewRatingCommentRepository creates a new SQLite rating comment repository.
func NewRatingCommentRepository(db *sql.DB) ratings.CommentRepository {
	return &sqliteCommentRepo{db: db}
}

func (r *sqliteCommentRepo) CreateComment(ctx context.Context, comment *ratings.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (id, rating_id, created_at, text)
		VALUES (?, ?, ?, ?)`,
		comment.ID, comment.RatingID, comment.CreatedAt.Unix(), comment.Text)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *sqliteCommentRepo) CommentsForRating(ctx context.Context, ratingID string) ([]ratings.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, rating_id, created_at, archived_at, text
		FROM comments
		WHERE rating_id = ? AND archived_at IS NULL
		ORDER BY created_at`, ratingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer closeRows(rows)

	var result []ratings.Comment
	for rows.Next() {
		var comment ratings.Comment
		var createdAt int64
		var archivedAt sql.NullInt64
		if err := rows.Scan(&comment.ID, &comment.RatingID, &createdAt,
			&archivedAt, &comment.Text); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.CreatedAt = time.Unix(createdAt, 0).UTC()
		if archivedAt.Valid {
			t := time.Unix(archivedAt.Int64, 0).UTC()
			comment.ArchivedAt = &t
		}
		result = append(result, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return result, nil
}

func (r *sqliteCommentRepo) ArchiveComments(ctx context.Context, ids []string, archivedAt time.Time, archivedBy string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]interface{}{archivedAt.Unix(), archivedBy}, stringArgs(ids)...)
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET archived_at = ?, archived_by = ?
		 WHERE id IN (`+placeholders(len(ids))+`) AND archived_at IS NULL`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to archive comments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check archive result: %w", err)
	}
	return int(affected), nil
}
