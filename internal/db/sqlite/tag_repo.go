package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"Placemap/internal/core/places"
	"Placemap/internal/core/tags"
)

type sqliteTagRepo struct {
	db *sql.DB
}

// NewTagRepository creates a new SQLite tag repository.
func NewTagRepository(db *sql.DB) tags.Repository {
	return &sqliteTagRepo{db: db}
}

func (r *sqliteTagRepo) CreateTagIfNotExists(ctx context.Context, tag tags.Tag) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (id) VALUES (?)`, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *sqliteTagRepo) AllTags(ctx context.Context) ([]tags.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer closeRows(rows)

	var result []tags.Tag
	for rows.Next() {
		var tag tags.Tag
		if err := rows.Scan(&tag.ID); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return result, nil
}

func (r *sqliteTagRepo) CountTags(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}

// MostPopularTags counts tag usage over the visible current revisions only,
// so rejected and archived places never inflate the statistics.
func (r *sqliteTagRepo) MostPopularTags(ctx context.Context, limit int) ([]tags.TagFrequency, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.tag, COUNT(*) AS freq
		FROM place_revision_tags t
		JOIN places p ON p.id = t.place_id AND p.current_rev = t.rev
		JOIN place_revisions r ON r.place_id = t.place_id AND r.rev = t.rev
		WHERE r.status >= ?
		GROUP BY t.tag
		ORDER BY freq DESC, t.tag ASC
		LIMIT ?`, int(places.StatusCreated), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular tags: %w", err)
	}
	defer closeRows(rows)

	var result []tags.TagFrequency
	for rows.Next() {
		var tf tags.TagFrequency
		if err := rows.Scan(&tf.Tag, &tf.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag frequency: %w", err)
		}
		result = append(result, tf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag frequencies: %w", err)
	}
	return result, nil
}
