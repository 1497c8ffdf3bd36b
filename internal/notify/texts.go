package notifygw

import (
	"fmt"
	"strings"

	"Placemap/internal/core/events"
	"Placemap/internal/core/places"
	"Placemap/internal/core/tags"
)

const mailSignature = "euphorische Grüße\ndas Karte von morgen-Team"

func confirmationEmailBody(url string) string {
	return fmt.Sprintf(
		"Na du Weltverbesserer*,\nwir freuen uns dass du bei der Karte von morgen mit dabei bist!\n\nBitte bestätige deine Email-Adresse hier:\n%s\n\n%s",
		url, mailSignature)
}

func resetPasswordEmailBody(url string) string {
	return fmt.Sprintf(
		"Hallo,\ndu kannst dein Passwort für die Karte von morgen hier zurücksetzen:\n%s\n\nWenn du das nicht angefordert hast, ignoriere diese Email einfach.\n\n%s",
		url, mailSignature)
}

func placeAddedEmailBody(place *places.Place) string {
	return placeEmailBody(place, "ein neuer Eintrag auf der Karte von morgen wurde erstellt")
}

func placeUpdatedEmailBody(place *places.Place) string {
	return placeEmailBody(place, "folgender Eintrag der Karte von morgen wurde verändert")
}

func placeEmailBody(place *places.Place, introSentence string) string {
	categories, rest := tags.SplitCategories(place.Tags)
	var category string
	if len(categories) > 0 {
		category = categories[0].Name
	}

	var address places.Address
	if place.Location.Address != nil {
		address = *place.Location.Address
	}
	var contact places.Contact
	if place.Contact != nil {
		contact = *place.Contact
	}
	var homepage string
	if place.Links != nil {
		homepage = place.Links.Homepage
	}

	return fmt.Sprintf(`Hallo,
%s:

%s (%s)
%s

    Tags: %s
    Adresse: %s
    Webseite: %s
    Email-Adresse: %s
    Telefon: %s

Eintrag anschauen oder bearbeiten:
https://kartevonmorgen.org/#/?entry=%s

Du kannst dein Abonnement des Kartenbereichs abbestellen indem du dich auf https://kartevonmorgen.org einloggst.

%s`,
		introSentence,
		place.Title, category,
		place.Description,
		strings.Join(rest, ", "),
		formatAddress(address),
		homepage,
		contact.Email,
		contact.Phone,
		place.ID,
		mailSignature)
}

func eventCreatedEmailBody(event *events.Event) string {
	return eventEmailBody(event, "ein neues Event auf der Karte von morgen wurde erstellt")
}

func eventUpdatedEmailBody(event *events.Event) string {
	return eventEmailBody(event, "folgendes Event der Karte von morgen wurde verändert")
}

func eventEmailBody(event *events.Event, introSentence string) string {
	var address places.Address
	if event.Location != nil && event.Location.Address != nil {
		address = *event.Location.Address
	}

	return fmt.Sprintf(`Hallo,
%s:

%s
%s

    Beginn: %s
    Tags: %s
    Adresse: %s
    Webseite: %s

Event anschauen oder bearbeiten:
https://kartevonmorgen.org/#/?entry=%s

%s`,
		introSentence,
		event.Title,
		event.Description,
		event.Start.Format("02.01.2006 15:04"),
		strings.Join(event.Tags, ", "),
		formatAddress(address),
		event.Homepage,
		event.ID,
		mailSignature)
}

func formatAddress(a places.Address) string {
	return strings.Join([]string{
		a.Street,
		strings.TrimSpace(a.Zip + " " + a.City),
		a.Country,
	}, ", ")
}
