package notifygw

import (
	"fmt"

	"Placemap/internal/core/events"
	"Placemap/internal/core/notify"
	"Placemap/internal/core/places"
	"Placemap/internal/core/users"
)

type notificationGateway struct {
	email notify.EmailGateway
}

// Compile-time interface compliance check.
var _ notify.NotificationGateway = (*notificationGateway)(nil)

// NewNotificationGateway builds notification texts and hands them to the
// e-mail gateway.
func NewNotificationGateway(email notify.EmailGateway) notify.NotificationGateway {
	return &notificationGateway{email: email}
}

func (g *notificationGateway) PlaceAdded(recipients []string, place *places.Place) {
	subject := fmt.Sprintf("Karte von morgen - neuer Eintrag: %s", place.Title)
	g.email.ComposeAndSend(recipients, subject, placeAddedEmailBody(place))
}

func (g *notificationGateway) PlaceUpdated(recipients []string, place *places.Place) {
	subject := fmt.Sprintf("Karte von morgen - Eintrag verändert: %s", place.Title)
	g.email.ComposeAndSend(recipients, subject, placeUpdatedEmailBody(place))
}

func (g *notificationGateway) EventCreated(recipients []string, event *events.Event) {
	subject := fmt.Sprintf("Karte von morgen - neues Event: %s", event.Title)
	g.email.ComposeAndSend(recipients, subject, eventCreatedEmailBody(event))
}

func (g *notificationGateway) EventUpdated(recipients []string, event *events.Event) {
	subject := fmt.Sprintf("Karte von morgen - Event verändert: %s", event.Title)
	g.email.ComposeAndSend(recipients, subject, eventUpdatedEmailBody(event))
}

func (g *notificationGateway) UserRegistered(user *users.User, confirmationURL string) {
	subject := "Karte von morgen - bitte bestätige deine Email-Adresse"
	g.email.ComposeAndSend([]string{user.Email}, subject, confirmationEmailBody(confirmationURL))
}

func (g *notificationGateway) UserResetPasswordRequested(email, resetURL string) {
	subject := "Karte von morgen - Passwort zurücksetzen"
	g.email.ComposeAndSend([]string{email}, subject, resetPasswordEmailBody(resetURL))
}
