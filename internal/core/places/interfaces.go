package places

import (
	"context"

	"Placemap/internal/core/orgs"
)

// Repository defines the data access interface for the revisioned place
// store. Implementations must enforce optimistic locking via a conditional
// update on the stored current revision.
type Repository interface {
	// CreateOrUpdatePlace writes a place revision.
	//
	// For revision 1 it inserts the place row and the first revision row
	// with status Created. For any later revision it requires the stored
	// current revision to be exactly place.Revision-1 and advances it,
	// failing with ErrInvalidVersion otherwise. Every stored revision gets
	// a seed review row (rev 1, status Created, comment "created") and its
	// revision-tag rows.
	CreateOrUpdatePlace(ctx context.Context, place *Place) error

	// GetPlace returns the current revision of a place joined with its
	// review status.
	GetPlace(ctx context.Context, id string) (*Place, ReviewStatus, error)

	// GetPlaces returns the current revisions of the given places. Unknown
	// ids are skipped.
	GetPlaces(ctx context.Context, ids []string) ([]PlaceRevision, error)

	// GetPlaceHistory returns every revision of a place (newest first) with
	// its review chain (newest first).
	GetPlaceHistory(ctx context.Context, id string) (*PlaceHistory, error)

	// ReviewPlaces applies a moderation decision to the current revision of
	// each listed place whose status differs from review.Status: it updates
	// the revision's status and appends a review row with the next review
	// rev. Returns the number of changed places. The Rev field of the given
	// review is ignored and assigned per place.
	ReviewPlaces(ctx context.Context, ids []string, review Review) (int, error)

	// AllPlaces returns the current revision of every place with its
	// status.
	AllPlaces(ctx context.Context) ([]PlaceRevision, error)

	// CountPlaces returns the number of places whose current revision is
	// visible.
	CountPlaces(ctx context.Context) (int, error)
}

// Service defines the business logic for creating, updating and moderating
// places. It composes tag normalization, owned-tag authorization and the
// revision engine; indexing and notification happen in the flow layer on
// top of it.
type Service interface {
	// CreatePlace validates and stores a brand-new place at revision 1.
	// The org, when non-nil, authorizes tags it owns.
	CreatePlace(ctx context.Context, req NewPlaceRequest, createdBy string, org *orgs.Organization) (*Place, error)

	// UpdatePlace validates and stores the next revision of an existing
	// place. req.Version must be the current revision plus one.
	UpdatePlace(ctx context.Context, id string, req UpdatePlaceRequest, updatedBy string, org *orgs.Organization) (*Place, error)

	// ReviewPlaces applies a moderation decision to the listed places and
	// returns the number of places actually changed.
	ReviewPlaces(ctx context.Context, ids []string, status ReviewStatus, reviewedBy, reviewContext, comment string) (int, error)

	// GetPlace returns the current revision of a place with its status.
	GetPlace(ctx context.Context, id string) (*PlaceRevision, error)

	// GetPlaces returns the current revisions of the given places.
	GetPlaces(ctx context.Context, ids []string) ([]PlaceRevision, error)

	// GetPlaceHistory returns the full revision and review history.
	GetPlaceHistory(ctx context.Context, id string) (*PlaceHistory, error)

	// FindDuplicates scans the whole collection pairwise and reports
	// suspected duplicates.
	FindDuplicates(ctx context.Context) ([]Duplicate, error)

	// CountPlaces returns the number of visible places.
	CountPlaces(ctx context.Context) (int, error)
}

// NewPlaceRequest carries the decoded payload for creating a place.
type NewPlaceRequest struct {
	Title        string   `json:"title"`
	OSMNode      *int64   `json:"osm_node,omitempty"`
	Description  string   `json:"description"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Street       string   `json:"street,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	State        string   `json:"state,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"telephone,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	Categories   []string `json:"categories"`
	Tags         []string `json:"tags"`
	License      string   `json:"license"`
	ImageURL     string   `json:"image_url,omitempty"`
	ImageLinkURL string   `json:"image_link_url,omitempty"`
}

// UpdatePlaceRequest carries the decoded payload for updating a place.
// Version is the revision this update produces, i.e. the base revision the
// client saw plus one.
type UpdatePlaceRequest struct {
	Version      uint64   `json:"version"`
	Title        string   `json:"title"`
	OSMNode      *int64   `json:"osm_node,omitempty"`
	Description  string   `json:"description"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Street       string   `json:"street,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	State        string   `json:"state,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"telephone,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	Categories   []string `json:"categories"`
	Tags         []string `json:"tags"`
	ImageURL     string   `json:"image_url,omitempty"`
	ImageLinkURL string   `json:"image_link_url,omitempty"`
}
