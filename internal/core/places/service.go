package places

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/tags"
	"Placemap/internal/core/validate"
)

type placeService struct {
	repo    Repository
	tagRepo tags.Repository
	orgGw   orgs.Gateway
}

// Compile-time interface compliance check.
var _ Service = (*placeService)(nil)

// NewPlaceService creates the place business logic on top of the given
// repositories.
func NewPlaceService(repo Repository, tagRepo tags.Repository, orgGw orgs.Gateway) Service {
	return &placeService{repo: repo, tagRepo: tagRepo, orgGw: orgGw}
}

// NewID mints an opaque place/event/rating identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *placeService) CreatePlace(ctx context.Context, req NewPlaceRequest, createdBy string, org *orgs.Organization) (*Place, error) {
	if strings.TrimSpace(req.License) == "" {
		return nil, validate.ErrLicense
	}
	pos, ok := geo.NewPoint(req.Lat, req.Lng)
	if !ok {
		return nil, validate.ErrInvalidPosition
	}
	tagList := tags.Normalize(tags.MergeCategoryIDs(req.Categories, req.Tags))

	// Tags the new place carries all count as added.
	pendingOrgIDs, err := orgs.AuthorizeTagChanges(ctx, s.orgGw, nil, tagList, org)
	if err != nil {
		return nil, err
	}

	place := &Place{
		ID:          NewID(),
		License:     req.License,
		Revision:    1,
		Created:     Activity{At: time.Now().UTC(), By: createdBy},
		OSMNode:     req.OSMNode,
		Title:       req.Title,
		Description: req.Description,
		Location:    Location{Pos: pos, Address: buildAddress(req.Street, req.Zip, req.City, req.Country, req.State)},
		Tags:        tagList,
	}
	if err := s.fillOptionalFields(place, req.Email, req.Phone, req.Homepage, req.ImageURL, req.ImageLinkURL, req.OpeningHours); err != nil {
		return nil, err
	}
	if err := s.storeRevision(ctx, place, pendingOrgIDs, 0); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *placeService) UpdatePlace(ctx context.Context, id string, req UpdatePlaceRequest, updatedBy string, org *orgs.Organization) (*Place, error) {
	pos, ok := geo.NewPoint(req.Lat, req.Lng)
	if !ok {
		return nil, validate.ErrInvalidPosition
	}
	old, _, err := s.repo.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	// Optimistic locking: the only valid next revision is the current one
	// plus one.
	if old.Revision+1 != req.Version {
		return nil, ErrInvalidVersion
	}
	tagList := tags.Normalize(tags.MergeCategoryIDs(req.Categories, req.Tags))
	pendingOrgIDs, err := orgs.AuthorizeTagChanges(ctx, s.orgGw, old.Tags, tagList, org)
	if err != nil {
		return nil, err
	}

	place := &Place{
		ID:          id,
		License:     old.License, // immutable
		Revision:    req.Version,
		Created:     Activity{At: time.Now().UTC(), By: updatedBy},
		OSMNode:     req.OSMNode,
		Title:       req.Title,
		Description: req.Description,
		Location:    Location{Pos: pos, Address: buildAddress(req.Street, req.Zip, req.City, req.Country, req.State)},
		Tags:        tagList,
	}
	if err := s.fillOptionalFields(place, req.Email, req.Phone, req.Homepage, req.ImageURL, req.ImageLinkURL, req.OpeningHours); err != nil {
		return nil, err
	}
	if err := s.storeRevision(ctx, place, pendingOrgIDs, old.Revision); err != nil {
		return nil, err
	}
	return place, nil
}

// storeRevision registers the revision's tags, writes the revision and
// records pending authorizations for touched owned tags.
func (s *placeService) storeRevision(ctx context.Context, place *Place, pendingOrgIDs []string, lastAuthorizedRev uint64) error {
	for _, t := range place.Tags {
		if err := s.tagRepo.CreateTagIfNotExists(ctx, tags.Tag{ID: t}); err != nil {
			return fmt.Errorf("registering tag %q: %w", t, err)
		}
	}
	if err := s.repo.CreateOrUpdatePlace(ctx, place); err != nil {
		return err
	}
	if len(pendingOrgIDs) > 0 {
		pending := orgs.PendingAuthorization{
			PlaceID:           place.ID,
			CreatedAt:         place.Created.At,
			LastAuthorizedRev: lastAuthorizedRev,
		}
		if err := s.orgGw.AddPendingAuthorizations(ctx, pendingOrgIDs, pending); err != nil {
			return fmt.Errorf("recording pending authorizations: %w", err)
		}
	}
	return nil
}

func (s *placeService) fillOptionalFields(place *Place, email, phone, homepage, imageURL, imageLinkURL, openingHours string) error {
	if email != "" {
		if err := validate.Email(email); err != nil {
			return err
		}
	}
	if email != "" || phone != "" {
		place.Contact = &Contact{Email: email, Phone: phone}
	}
	links, err := buildLinks(homepage, imageURL, imageLinkURL)
	if err != nil {
		return err
	}
	place.Links = links
	if openingHours != "" {
		if err := validate.OpeningHours(openingHours); err != nil {
			return err
		}
		place.OpeningHours = strings.TrimSpace(openingHours)
	}
	return nil
}

func (s *placeService) ReviewPlaces(ctx context.Context, ids []string, status ReviewStatus, reviewedBy, reviewContext, comment string) (int, error) {
	review := Review{
		Status:    status,
		CreatedAt: time.Now().UTC(),
		CreatedBy: reviewedBy,
		Context:   reviewContext,
		Comment:   comment,
	}
	return s.repo.ReviewPlaces(ctx, ids, review)
}

func (s *placeService) GetPlace(ctx context.Context, id string) (*PlaceRevision, error) {
	place, status, err := s.repo.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PlaceRevision{Place: *place, Status: status}, nil
}

func (s *placeService) GetPlaces(ctx context.Context, ids []string) ([]PlaceRevision, error) {
	return s.repo.GetPlaces(ctx, ids)
}

func (s *placeService) GetPlaceHistory(ctx context.Context, id string) (*PlaceHistory, error) {
	return s.repo.GetPlaceHistory(ctx, id)
}

func (s *placeService) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	all, err := s.repo.AllPlaces(ctx)
	if err != nil {
		return nil, err
	}
	return FindDuplicates(all, all), nil
}

func (s *placeService) CountPlaces(ctx context.Context) (int, error) {
	return s.repo.CountPlaces(ctx)
}

func buildAddress(street, zip, city, country, state string) *Address {
	a := Address{Street: street, Zip: zip, City: city, Country: country, State: state}
	if a.IsEmpty() {
		return nil
	}
	return &a
}

func buildLinks(homepage, imageURL, imageLinkURL string) (*Links, error) {
	homepage, err := validate.URL(homepage)
	if err != nil {
		return nil, err
	}
	image, err := validate.URL(imageURL)
	if err != nil {
		return nil, err
	}
	imageHref, err := validate.URL(imageLinkURL)
	if err != nil {
		return nil, err
	}
	l := Links{Homepage: homepage, Image: image, ImageHref: imageHref}
	if l.IsEmpty() {
		return nil, nil
	}
	return &l, nil
}
