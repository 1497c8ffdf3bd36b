package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
)

type sqlitePlaceRepo struct {
	db *sql.DB
}

// NewPlaceRepository creates a new SQLite place repository.
func NewPlaceRepository(db *sql.DB) places.Repository {
	return &sqlitePlaceRepo{db: db}
}

const placeRevisionColumns = `
	r.place_id, p.license, r.rev, r.status, r.created_at, r.created_by, r.osm_node,
	r.title, r.description, r.lat, r.lng,
	r.street, r.zip, r.city, r.country, r.state,
	r.opening_hours, r.contact_email, r.contact_phone,
	r.homepage, r.image_url, r.image_link_url`

// CreateOrUpdatePlace writes one place revision inside a transaction. The
// conditional update on places.current_rev is what enforces optimistic
// locking: concurrent writers race on the same predecessor revision and only
// one of them advances it.
func (r *sqlitePlaceRepo) CreateOrUpdatePlace(ctx context.Context, place *places.Place) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	if place.Revision == 1 {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO places (id, license, current_rev) VALUES (?, ?, 1)`,
			place.ID, place.License)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				return places.ErrInvalidVersion
			}
			return fmt.Errorf("failed to insert place: %w", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`UPDATE places SET current_rev = ? WHERE id = ? AND current_rev = ?`,
			place.Revision, place.ID, place.Revision-1)
		if err != nil {
			return fmt.Errorf("failed to advance place revision: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM places WHERE id = ?`, place.ID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to probe place: %w", err)
			}
			if exists == 0 {
				return places.ErrNotFound
			}
			return places.ErrInvalidVersion
		}
	}

	if err := insertRevision(ctx, tx, place); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit place revision: %w", err)
	}
	return nil
}

func insertRevision(ctx context.Context, tx *sql.Tx, place *places.Place) error {
	var address places.Address
	if place.Location.Address != nil {
		address = *place.Location.Address
	}
	var contact places.Contact
	if place.Contact != nil {
		contact = *place.Contact
	}
	var links places.Links
	if place.Links != nil {
		links = *place.Links
	}

	var osmNode sql.NullInt64
	if place.OSMNode != nil {
		osmNode = sql.NullInt64{Int64: *place.OSMNode, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO place_revisions (
			place_id, rev, status, created_at, created_by, osm_node,
			title, description, lat, lng,
			street, zip, city, country, state,
			opening_hours, contact_email, contact_phone,
			homepage, image_url, image_link_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		place.ID, place.Revision, places.StatusCreated,
		place.Created.At.Unix(), place.Created.By, osmNode,
		place.Title, place.Description,
		place.Location.Pos.Lat, place.Location.Pos.Lng,
		address.Street, address.Zip, address.City, address.Country, address.State,
		place.OpeningHours, contact.Email, contact.Phone,
		links.Homepage, links.Image, links.ImageHref)
	if err != nil {
		return fmt.Errorf("failed to insert place revision: %w", err)
	}

	for _, tag := range place.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO place_revision_tags (place_id, rev, tag) VALUES (?, ?, ?)`,
			place.ID, place.Revision, tag)
		if err != nil {
			return fmt.Errorf("failed to insert revision tag: %w", err)
		}
	}

	// Every fresh revision starts its review chain with a seed entry.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO place_revision_reviews (
			place_id, rev, review_rev, status, created_at, created_by, context, comment
		) VALUES (?, ?, 1, ?, ?, ?, '', 'created')`,
		place.ID, place.Revision, places.StatusCreated,
		place.Created.At.Unix(), place.Created.By)
	if err != nil {
		return fmt.Errorf("failed to insert seed review: %w", err)
	}
	return nil
}

func (r *sqlitePlaceRepo) GetPlace(ctx context.Context, id string) (*places.Place, places.ReviewStatus, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+placeRevisionColumns+`
		FROM place_revisions r
		JOIN places p ON p.id = r.place_id AND p.current_rev = r.rev
		WHERE r.place_id = ?`, id)

	rev, err := scanPlaceRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, places.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get place: %w", err)
	}
	if err := r.loadTags(ctx, rev); err != nil {
		return nil, 0, err
	}
	return &rev.Place, rev.Status, nil
}

func (r *sqlitePlaceRepo) GetPlaces(ctx context.Context, ids []string) ([]places.PlaceRevision, error) {
	if len(ids) == 0 {
		return []places.PlaceRevision{}, nil
	}
	query := `
		SELECT ` + placeRevisionColumns + `
		FROM place_revisions r
		JOIN places p ON p.id = r.place_id AND p.current_rev = r.rev
		WHERE r.place_id IN (` + placeholders(len(ids)) + `)
		ORDER BY r.place_id`
	return r.queryRevisions(ctx, query, stringArgs(ids)...)
}

func (r *sqlitePlaceRepo) AllPlaces(ctx context.Context) ([]places.PlaceRevision, error) {
	query := `
		SELECT ` + placeRevisionColumns + `
		FROM place_revisions r
		JOIN places p ON p.id = r.place_id AND p.current_rev = r.rev
		ORDER BY r.place_id`
	return r.queryRevisions(ctx, query)
}

func (r *sqlitePlaceRepo) queryRevisions(ctx context.Context, query string, args ...interface{}) ([]places.PlaceRevision, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer closeRows(rows)

	var result []places.PlaceRevision
	for rows.Next() {
		rev, err := scanPlaceRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		result = append(result, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating places: %w", err)
	}
	for i := range result {
		if err := r.loadTags(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *sqlitePlaceRepo) GetPlaceHistory(ctx context.Context, id string) (*places.PlaceHistory, error) {
	query := `
		SELECT ` + placeRevisionColumns + `
		FROM place_revisions r
		JOIN places p ON p.id = r.place_id
		WHERE r.place_id = ?
		ORDER BY r.rev DESC`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query place history: %w", err)
	}
	defer closeRows(rows)

	history := &places.PlaceHistory{ID: id}
	for rows.Next() {
		rev, err := scanPlaceRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place revision: %w", err)
		}
		history.License = rev.License
		history.Revisions = append(history.Revisions, places.RevisionWithReviews{PlaceRevision: *rev})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place history: %w", err)
	}
	if len(history.Revisions) == 0 {
		return nil, places.ErrNotFound
	}
	for i := range history.Revisions {
		rev := &history.Revisions[i]
		if err := r.loadTags(ctx, &rev.PlaceRevision); err != nil {
			return nil, err
		}
		reviews, err := r.loadReviews(ctx, id, rev.Revision)
		if err != nil {
			return nil, err
		}
		rev.Reviews = reviews
	}
	return history, nil
}

func (r *sqlitePlaceRepo) loadReviews(ctx context.Context, placeID string, rev uint64) ([]places.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT review_rev, status, created_at, created_by, context, comment
		FROM place_revision_reviews
		WHERE place_id = ? AND rev = ?
		ORDER BY review_rev DESC`, placeID, rev)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer closeRows(rows)

	var reviews []places.Review
	for rows.Next() {
		var review places.Review
		var createdAt int64
		var status int
		if err := rows.Scan(&review.Rev, &status, &createdAt,
			&review.CreatedBy, &review.Context, &review.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		review.Status = places.ReviewStatus(status)
		review.CreatedAt = time.Unix(createdAt, 0).UTC()
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

func (r *sqlitePlaceRepo) ReviewPlaces(ctx context.Context, ids []string, review places.Review) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	changed := 0
	for _, id := range ids {
		var rev uint64
		var status int
		err := tx.QueryRowContext(ctx, `
			SELECT r.rev, r.status
			FROM place_revisions r
			JOIN places p ON p.id = r.place_id AND p.current_rev = r.rev
			WHERE r.place_id = ?`, id).Scan(&rev, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, places.ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("failed to load place for review: %w", err)
		}
		if places.ReviewStatus(status) == review.Status {
			continue
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE place_revisions SET status = ? WHERE place_id = ? AND rev = ?`,
			int(review.Status), id, rev)
		if err != nil {
			return 0, fmt.Errorf("failed to update revision status: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO place_revision_reviews (
				place_id, rev, review_rev, status, created_at, created_by, context, comment
			) VALUES (
				?, ?,
				(SELECT COALESCE(MAX(review_rev), 0) + 1
				 FROM place_revision_reviews WHERE place_id = ? AND rev = ?),
				?, ?, ?, ?, ?)`,
			id, rev, id, rev,
			int(review.Status), review.CreatedAt.Unix(), review.CreatedBy,
			review.Context, review.Comment)
		if err != nil {
			return 0, fmt.Errorf("failed to append review: %w", err)
		}
		changed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reviews: %w", err)
	}
	return changed, nil
}

func (r *sqlitePlaceRepo) CountPlaces(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM place_revisions r
		JOIN places p ON p.id = r.place_id AND p.current_rev = r.rev
		WHERE r.status >= ?`, int(places.StatusCreated)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

func (r *sqlitePlaceRepo) loadTags(ctx context.Context, rev *places.PlaceRevision) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM place_revision_tags WHERE place_id = ? AND rev = ? ORDER BY tag`,
		rev.ID, rev.Revision)
	if err != nil {
		return fmt.Errorf("failed to query revision tags: %w", err)
	}
	defer closeRows(rows)

	tagList := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		tagList = append(tagList, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}
	rev.Tags = tagList
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlaceRevision(row rowScanner) (*places.PlaceRevision, error) {
	var rev places.PlaceRevision
	var status int
	var createdAt int64
	var street, zip, city, country, state sql.NullString
	var openingHours, contactEmail, contactPhone sql.NullString
	var homepage, imageURL, imageLinkURL sql.NullString
	var lat, lng float64
	var osmNode sql.NullInt64

	err := row.Scan(
		&rev.ID, &rev.License, &rev.Revision, &status, &createdAt, &rev.Created.By, &osmNode,
		&rev.Title, &rev.Description, &lat, &lng,
		&street, &zip, &city, &country, &state,
		&openingHours, &contactEmail, &contactPhone,
		&homepage, &imageURL, &imageLinkURL,
	)
	if err != nil {
		return nil, err
	}

	rev.Status = places.ReviewStatus(status)
	rev.Created.At = time.Unix(createdAt, 0).UTC()
	if osmNode.Valid {
		n := osmNode.Int64
		rev.OSMNode = &n
	}
	rev.Location.Pos = geo.Point{Lat: lat, Lng: lng}
	address := places.Address{
		Street:  street.String,
		Zip:     zip.String,
		City:    city.String,
		Country: country.String,
		State:   state.String,
	}
	if !address.IsEmpty() {
		rev.Location.Address = &address
	}
	rev.OpeningHours = openingHours.String
	contact := places.Contact{Email: contactEmail.String, Phone: contactPhone.String}
	if !contact.IsEmpty() {
		rev.Contact = &contact
	}
	links := places.Links{
		Homepage:  homepage.String,
		Image:     imageURL.String,
		ImageHref: imageLinkURL.String,
	}
	if !links.IsEmpty() {
		rev.Links = &links
	}
	return &rev, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("Failed to close rows: %v", err)
	}
}
