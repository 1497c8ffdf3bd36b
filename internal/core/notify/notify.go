// Package notify defines the outbound notification contracts. Implementations
// must never block the calling use case on delivery.
package notify

import (
	"Placemap/internal/core/events"
	"Placemap/internal/core/places"
	"Placemap/internal/core/users"
)

// EmailGateway sends e-mails. Implementations log and swallow delivery
// failures; notifications are best effort.
type EmailGateway interface {
	ComposeAndSend(recipients []string, subject, body string)
}

// NotificationGateway fans events of interest out to subscribers.
type NotificationGateway interface {
	// PlaceAdded notifies subscribers whose box contains the new place.
	PlaceAdded(recipients []string, place *places.Place)

	// PlaceUpdated notifies subscribers whose box contains the changed
	// place.
	PlaceUpdated(recipients []string, place *places.Place)

	// EventCreated notifies subscribers about a new event.
	EventCreated(recipients []string, event *events.Event)

	// EventUpdated notifies subscribers about a changed event.
	EventUpdated(recipients []string, event *events.Event)

	// UserRegistered sends the e-mail confirmation link.
	UserRegistered(user *users.User, confirmationURL string)

	// UserResetPasswordRequested sends the password reset link.
	UserResetPasswordRequested(email, resetURL string)
}
