package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"Placemap/internal/core/events"
	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
)

type sqliteEventRepo struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *sql.DB) events.Repository {
	return &sqliteEventRepo{db: db}
}

const eventColumns = `
	id, title, description, start_at, end_at, lat, lng,
	street, zip, city, country, state,
	contact_email, contact_phone, homepage,
	created_by, registration, organizer, archived_at`

func (r *sqliteEventRepo) CreateEvent(ctx context.Context, event *events.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	args := eventArgs(event)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (
			id, title, description, start_at, end_at, lat, lng,
			street, zip, city, country, state,
			contact_email, contact_phone, homepage,
			created_by, registration, organizer, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	if err := replaceEventTags(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event: %w", err)
	}
	return nil
}

func (r *sqliteEventRepo) UpdateEvent(ctx context.Context, event *events.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback transaction: %v", err)
		}
	}()

	args := eventArgs(event)
	// Shift the id to the end for the WHERE clause.
	args = append(args[1:], event.ID)
	result, err := tx.ExecContext(ctx, `
		UPDATE events SET
			title = ?, description = ?, start_at = ?, end_at = ?, lat = ?, lng = ?,
			street = ?, zip = ?, city = ?, country = ?, state = ?,
			contact_email = ?, contact_phone = ?, homepage = ?,
			created_by = ?, registration = ?, organizer = ?, archived_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return events.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_tags WHERE event_id = ?`, event.ID); err != nil {
		return fmt.Errorf("failed to clear event tags: %w", err)
	}
	if err := replaceEventTags(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event update: %w", err)
	}
	return nil
}

func replaceEventTags(ctx context.Context, tx *sql.Tx, event *events.Event) error {
	for _, tag := range event.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO event_tags (event_id, tag) VALUES (?, ?)`,
			event.ID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert event tag: %w", err)
		}
	}
	return nil
}

func (r *sqliteEventRepo) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if err := r.loadEventTags(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *sqliteEventRepo) GetEvents(ctx context.Context, startMin, startMax *time.Time) ([]events.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE archived_at IS NULL`
	var args []interface{}
	if startMin != nil {
		query += ` AND start_at >= ?`
		args = append(args, startMin.Unix())
	}
	if startMax != nil {
		query += ` AND start_at <= ?`
		args = append(args, startMax.Unix())
	}
	query += ` ORDER BY start_at, id`
	return r.queryEvents(ctx, query, args...)
}

func (r *sqliteEventRepo) AllEvents(ctx context.Context) ([]events.Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_at, id`)
}

func (r *sqliteEventRepo) queryEvents(ctx context.Context, query string, args ...interface{}) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeRows(rows)

	var result []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	for i := range result {
		if err := r.loadEventTags(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *sqliteEventRepo) ArchiveEvents(ctx context.Context, ids []string, archivedAt time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]interface{}{archivedAt.Unix()}, stringArgs(ids)...)
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET archived_at = ?
		 WHERE id IN (`+placeholders(len(ids))+`) AND archived_at IS NULL`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to archive events: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check archive result: %w", err)
	}
	return int(affected), nil
}

func (r *sqliteEventRepo) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *sqliteEventRepo) loadEventTags(ctx context.Context, event *events.Event) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM event_tags WHERE event_id = ? ORDER BY tag`, event.ID)
	if err != nil {
		return fmt.Errorf("failed to query event tags: %w", err)
	}
	defer closeRows(rows)

	tagList := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan event tag: %w", err)
		}
		tagList = append(tagList, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating event tags: %w", err)
	}
	event.Tags = tagList
	return nil
}

func eventArgs(event *events.Event) []interface{} {
	var end sql.NullInt64
	if event.End != nil {
		end = sql.NullInt64{Int64: event.End.Unix(), Valid: true}
	}
	var lat, lng sql.NullFloat64
	var address places.Address
	if event.Location != nil {
		lat = sql.NullFloat64{Float64: event.Location.Pos.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: event.Location.Pos.Lng, Valid: true}
		if event.Location.Address != nil {
			address = *event.Location.Address
		}
	}
	var contact places.Contact
	if event.Contact != nil {
		contact = *event.Contact
	}
	var registration sql.NullInt64
	if event.Registration != nil {
		registration = sql.NullInt64{Int64: int64(*event.Registration), Valid: true}
	}
	var archivedAt sql.NullInt64
	if event.ArchivedAt != nil {
		archivedAt = sql.NullInt64{Int64: event.ArchivedAt.Unix(), Valid: true}
	}
	return []interface{}{
		event.ID, event.Title, event.Description,
		event.Start.Unix(), end, lat, lng,
		address.Street, address.Zip, address.City, address.Country, address.State,
		contact.Email, contact.Phone, event.Homepage,
		event.CreatedBy, registration, event.Organizer, archivedAt,
	}
}

func scanEvent(row rowScanner) (*events.Event, error) {
	var event events.Event
	var start int64
	var end, registration, archivedAt sql.NullInt64
	var lat, lng sql.NullFloat64
	var street, zip, city, country, state sql.NullString
	var contactEmail, contactPhone, homepage, organizer sql.NullString

	err := row.Scan(&event.ID, &event.Title, &event.Description,
		&start, &end, &lat, &lng,
		&street, &zip, &city, &country, &state,
		&contactEmail, &contactPhone, &homepage,
		&event.CreatedBy, &registration, &organizer, &archivedAt)
	if err != nil {
		return nil, err
	}

	event.Start = time.Unix(start, 0).UTC()
	if end.Valid {
		t := time.Unix(end.Int64, 0).UTC()
		event.End = &t
	}
	address := places.Address{
		Street:  street.String,
		Zip:     zip.String,
		City:    city.String,
		Country: country.String,
		State:   state.String,
	}
	if lat.Valid && lng.Valid {
		event.Location = &places.Location{Pos: geo.Point{Lat: lat.Float64, Lng: lng.Float64}}
		if !address.IsEmpty() {
			event.Location.Address = &address
		}
	} else if !address.IsEmpty() {
		event.Location = &places.Location{Address: &address}
	}
	contact := places.Contact{Email: contactEmail.String, Phone: contactPhone.String}
	if !contact.IsEmpty() {
		event.Contact = &contact
	}
	event.Homepage = homepage.String
	event.Organizer = organizer.String
	if registration.Valid {
		reg := events.RegistrationType(registration.Int64)
		event.Registration = &reg
	}
	if archivedAt.Valid {
		t := time.Unix(archivedAt.Int64, 0).UTC()
		event.ArchivedAt = &t
	}
	return &event, nil
}
