package events

import (
	"context"
	"time"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/orgs"
)

// Repository defines the data access interface for events.
type Repository interface {
	// CreateEvent inserts a new event with its tags.
	CreateEvent(ctx context.Context, event *Event) error

	// UpdateEvent overwrites an existing event and its tags.
	UpdateEvent(ctx context.Context, event *Event) error

	// GetEvent returns an event by id.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// GetEvents returns non-archived events, optionally bounded by start
	// time, sorted chronologically.
	GetEvents(ctx context.Context, startMin, startMax *time.Time) ([]Event, error)

	// AllEvents returns every event, archived included, chronologically.
	AllEvents(ctx context.Context) ([]Event, error)

	// ArchiveEvents sets ArchivedAt on the given events where it is still
	// unset and returns the number of rows changed.
	ArchiveEvents(ctx context.Context, ids []string, archivedAt time.Time) (int, error)

	// DeleteEvent removes an event row entirely. Normal flows archive;
	// deletion is reserved for the tag-scoped delete.
	DeleteEvent(ctx context.Context, id string) error
}

// Service defines the business logic for the event lifecycle.
type Service interface {
	// CreateEvent validates and stores a new event. A creator e-mail is
	// required and resolved to a user, creating one on the fly if needed.
	CreateEvent(ctx context.Context, req EventRequest, org *orgs.Organization) (*Event, error)

	// UpdateEvent validates and overwrites an existing event.
	UpdateEvent(ctx context.Context, id string, req EventRequest, org *orgs.Organization) (*Event, error)

	// GetEvent returns an event by id.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// QueryEvents filters events by the given query.
	QueryEvents(ctx context.Context, q EventQuery) ([]Event, error)

	// ArchiveEvents archives the given events, skipping already archived
	// ones, and returns the number changed.
	ArchiveEvents(ctx context.Context, ids []string) (int, error)

	// DeleteEvent deletes an event iff it carries at least one of the
	// required tags (an empty filter always matches). Returns ErrNotFound
	// when nothing matched.
	DeleteEvent(ctx context.Context, id string, requiredTags []string) error
}

// EventRequest carries the decoded payload for creating or updating an
// event.
type EventRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Start        int64    `json:"start"`
	End          *int64   `json:"end,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Street       string   `json:"street,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	State        string   `json:"state,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"telephone,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreatedBy    string   `json:"created_by,omitempty"`
	Registration string   `json:"registration,omitempty"`
	Organizer    string   `json:"organizer,omitempty"`
}

// EventQuery filters event listings. All fields are optional.
type EventQuery struct {
	Bbox      *geo.Bbox
	Tags      []string
	StartMin  *time.Time
	StartMax  *time.Time
	CreatedBy string // e-mail address
	Limit     int
}
