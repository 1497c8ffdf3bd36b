package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/subscriptions"
)

type sqliteSubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new SQLite subscription repository.
func NewSubscriptionRepository(db *sql.DB) subscriptions.Repository {
	return &sqliteSubscriptionRepo{db: db}
}

func (r *sqliteSubscriptionRepo) CreateBboxSubscription(ctx context.Context, sub *subscriptions.BboxSubscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bbox_subscriptions (
			id, email, south_west_lat, south_west_lng, north_east_lat, north_east_lng
		) VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Email,
		sub.Bbox.SouthWest.Lat, sub.Bbox.SouthWest.Lng,
		sub.Bbox.NorthEast.Lat, sub.Bbox.NorthEast.Lng)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (r *sqliteSubscriptionRepo) GetBboxSubscriptionsByEmail(ctx context.Context, email string) ([]subscriptions.BboxSubscription, error) {
	return r.querySubscriptions(ctx, `
		SELECT id, email, south_west_lat, south_west_lng, north_east_lat, north_east_lng
		FROM bbox_subscriptions WHERE email = ? ORDER BY id`, email)
}

func (r *sqliteSubscriptionRepo) DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bbox_subscriptions WHERE email = ?`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete subscriptions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(affected), nil
}

func (r *sqliteSubscriptionRepo) AllBboxSubscriptions(ctx context.Context) ([]subscriptions.BboxSubscription, error) {
	return r.querySubscriptions(ctx, `
		SELECT id, email, south_west_lat, south_west_lng, north_east_lat, north_east_lng
		FROM bbox_subscriptions ORDER BY id`)
}

func (r *sqliteSubscriptionRepo) querySubscriptions(ctx context.Context, query string, args ...interface{}) ([]subscriptions.BboxSubscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer closeRows(rows)

	var result []subscriptions.BboxSubscription
	for rows.Next() {
		var sub subscriptions.BboxSubscription
		var swLat, swLng, neLat, neLng float64
		if err := rows.Scan(&sub.ID, &sub.Email, &swLat, &swLng, &neLat, &neLng); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.Bbox = geo.Bbox{
			SouthWest: geo.Point{Lat: swLat, Lng: swLng},
			NorthEast: geo.Point{Lat: neLat, Lng: neLng},
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return result, nil
}
