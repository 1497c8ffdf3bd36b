package subscriptions

import (
	"context"

	"Placemap/internal/core/geo"
)

// Repository defines the data access interface for bounding box
// subscriptions.
type Repository interface {
	// CreateBboxSubscription inserts a new subscription.
	CreateBboxSubscription(ctx context.Context, sub *BboxSubscription) error

	// GetBboxSubscriptionsByEmail returns the subscriptions of one e-mail
	// address.
	GetBboxSubscriptionsByEmail(ctx context.Context, email string) ([]BboxSubscription, error)

	// DeleteBboxSubscriptionsByEmail removes all subscriptions of an e-mail
	// address and returns the number removed.
	DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) (int, error)

	// AllBboxSubscriptions returns every subscription.
	AllBboxSubscriptions(ctx context.Context) ([]BboxSubscription, error)
}

// Service defines the business logic for bounding box subscriptions.
type Service interface {
	// SubscribeToBbox replaces all existing subscriptions of the e-mail
	// address with a single new one. Each address holds at most one
	// subscription at a time.
	SubscribeToBbox(ctx context.Context, email string, bbox geo.Bbox) (*BboxSubscription, error)

	// UnsubscribeAll removes all subscriptions of the e-mail address.
	UnsubscribeAll(ctx context.Context, email string) error

	// SubscriptionsByEmail returns the subscriptions of the e-mail address.
	SubscriptionsByEmail(ctx context.Context, email string) ([]BboxSubscription, error)

	// EmailAddressesByCoordinate returns the deduplicated, sorted e-mail
	// addresses subscribed to a box containing the given point.
	EmailAddressesByCoordinate(ctx context.Context, pos geo.Point) ([]string, error)
}
