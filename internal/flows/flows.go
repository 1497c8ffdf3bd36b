// Package flows orchestrates the use cases that span multiple services:
// every place or event write also updates the search index and notifies
// subscribers. Index and notification failures are logged and never fail the
// originating write.
package flows

import (
	"context"
	"log/slog"

	"Placemap/internal/core/events"
	"Placemap/internal/core/notify"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
	"Placemap/internal/core/subscriptions"
)

// Flows wires the domain services to the search index and the notification
// fan-out.
type Flows struct {
	Places        places.Service
	Events        events.Service
	Ratings       ratings.Service
	Subscriptions subscriptions.Service
	Index         search.Indexer
	Notify        notify.NotificationGateway
}

// CreatePlace stores a new place, indexes it and notifies subscribers whose
// box contains it.
func (f *Flows) CreatePlace(ctx context.Context, req places.NewPlaceRequest, createdBy string, org *orgs.Organization) (*places.Place, error) {
	place, err := f.Places.CreatePlace(ctx, req, createdBy, org)
	if err != nil {
		return nil, err
	}
	f.reindexPlace(ctx, place)
	f.notifySubscribers(ctx, place, true)
	return place, nil
}

// UpdatePlace stores the next revision of a place, reindexes it and notifies
// subscribers.
func (f *Flows) UpdatePlace(ctx context.Context, id string, req places.UpdatePlaceRequest, updatedBy string, org *orgs.Organization) (*places.Place, error) {
	place, err := f.Places.UpdatePlace(ctx, id, req, updatedBy, org)
	if err != nil {
		return nil, err
	}
	f.reindexPlace(ctx, place)
	f.notifySubscribers(ctx, place, false)
	return place, nil
}

// ReviewPlaces applies a moderation decision. Places turning invisible leave
// the index; archiving additionally archives their live ratings and
// comments.
func (f *Flows) ReviewPlaces(ctx context.Context, ids []string, status places.ReviewStatus, reviewedBy, reviewContext, comment string) (int, error) {
	changed, err := f.Places.ReviewPlaces(ctx, ids, status, reviewedBy, reviewContext, comment)
	if err != nil {
		return 0, err
	}
	if status == places.StatusArchived {
		if _, err := f.Ratings.ArchiveRatingsOfPlaces(ctx, ids, reviewedBy); err != nil {
			return 0, err
		}
	}
	for _, id := range ids {
		if status.IsVisible() {
			rev, err := f.Places.GetPlace(ctx, id)
			if err != nil {
				slog.Error("failed to load place for reindexing", "place", id, "error", err)
				continue
			}
			f.reindexPlace(ctx, &rev.Place)
		} else {
			if err := f.Index.RemovePlaceByID(id); err != nil {
				slog.Error("failed to remove place from index", "place", id, "error", err)
			}
		}
	}
	f.flushIndex()
	return changed, nil
}

// RatePlace stores a rating and refreshes the rated place in the index so
// result ordering follows the new average.
func (f *Flows) RatePlace(ctx context.Context, req ratings.RateRequest) (*ratings.Rating, error) {
	rev, err := f.Places.GetPlace(ctx, req.PlaceID)
	if err != nil {
		return nil, err
	}
	rating, err := f.Ratings.RatePlace(ctx, req)
	if err != nil {
		return nil, err
	}
	f.reindexPlace(ctx, &rev.Place)
	return rating, nil
}

// CreateEvent stores a new event and notifies subscribers whose box contains
// its location.
func (f *Flows) CreateEvent(ctx context.Context, req events.EventRequest, org *orgs.Organization) (*events.Event, error) {
	event, err := f.Events.CreateEvent(ctx, req, org)
	if err != nil {
		return nil, err
	}
	f.notifyEventSubscribers(ctx, event, true)
	return event, nil
}

// UpdateEvent overwrites an event and notifies subscribers.
func (f *Flows) UpdateEvent(ctx context.Context, id string, req events.EventRequest, org *orgs.Organization) (*events.Event, error) {
	event, err := f.Events.UpdateEvent(ctx, id, req, org)
	if err != nil {
		return nil, err
	}
	f.notifyEventSubscribers(ctx, event, false)
	return event, nil
}

func (f *Flows) reindexPlace(ctx context.Context, place *places.Place) {
	avg, err := f.Ratings.AvgRatingsForPlace(ctx, place.ID)
	if err != nil {
		slog.Error("failed to load ratings for indexing", "place", place.ID, "error", err)
		avg = ratings.AvgRatings{}
	}
	if err := f.Index.AddOrUpdatePlace(place, avg); err != nil {
		slog.Error("failed to index place", "place", place.ID, "error", err)
		return
	}
	f.flushIndex()
}

func (f *Flows) flushIndex() {
	if err := f.Index.Flush(); err != nil {
		slog.Error("failed to flush search index", "error", err)
	}
}

func (f *Flows) notifySubscribers(ctx context.Context, place *places.Place, created bool) {
	recipients, err := f.Subscriptions.EmailAddressesByCoordinate(ctx, place.Location.Pos)
	if err != nil {
		slog.Error("failed to resolve subscribers", "place", place.ID, "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}
	if created {
		f.Notify.PlaceAdded(recipients, place)
	} else {
		f.Notify.PlaceUpdated(recipients, place)
	}
}

func (f *Flows) notifyEventSubscribers(ctx context.Context, event *events.Event, created bool) {
	if event.Location == nil {
		return
	}
	recipients, err := f.Subscriptions.EmailAddressesByCoordinate(ctx, event.Location.Pos)
	if err != nil {
		slog.Error("failed to resolve subscribers", "event", event.ID, "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}
	if created {
		f.Notify.EventCreated(recipients, event)
	} else {
		f.Notify.EventUpdated(recipients, event)
	}
}
