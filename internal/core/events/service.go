package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/places"
	"Placemap/internal/core/tags"
	"Placemap/internal/core/users"
	"Placemap/internal/core/validate"
)

// bboxExtendFraction widens query bounding boxes so events just outside the
// visible map still show up.
const bboxExtendFraction = 0.1

// UserDirectory resolves creator e-mail addresses to accounts. Implemented
// by the users service.
type UserDirectory interface {
	CreateUserFromEmail(ctx context.Context, email string) (*users.User, error)
	TryGetUserByEmail(ctx context.Context, email string) (*users.User, error)
}

type eventService struct {
	repo    Repository
	tagRepo tags.Repository
	orgGw   orgs.Gateway
	userDir UserDirectory
}

// Compile-time interface compliance check.
var _ Service = (*eventService)(nil)

// NewEventService creates the event business logic.
func NewEventService(repo Repository, tagRepo tags.Repository, orgGw orgs.Gateway, userDir UserDirectory) Service {
	return &eventService{repo: repo, tagRepo: tagRepo, orgGw: orgGw, userDir: userDir}
}

func (s *eventService) CreateEvent(ctx context.Context, req EventRequest, org *orgs.Organization) (*Event, error) {
	event, err := s.buildEvent(ctx, req, org)
	if err != nil {
		return nil, err
	}
	event.ID = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.storeTags(ctx, event.Tags); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, req EventRequest, org *orgs.Organization) (*Event, error) {
	old, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.buildEvent(ctx, req, org)
	if err != nil {
		return nil, err
	}
	event.ID = old.ID
	event.ArchivedAt = old.ArchivedAt
	if err := s.storeTags(ctx, event.Tags); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// buildEvent validates the request and assembles the event, resolving the
// creator e-mail to a user account.
func (s *eventService) buildEvent(ctx context.Context, req EventRequest, org *orgs.Organization) (*Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validate.ErrTitle
	}
	creatorEmail := strings.TrimSpace(req.CreatedBy)
	if creatorEmail == "" {
		return nil, validate.ErrCreatorEmail
	}
	if err := validate.Email(creatorEmail); err != nil {
		return nil, validate.ErrCreatorEmail
	}

	start := time.Unix(req.Start, 0).UTC()
	var end *time.Time
	if req.End != nil {
		e := time.Unix(*req.End, 0).UTC()
		if e.Before(start) {
			return nil, ErrEndBeforeStart
		}
		end = &e
	}

	contact, err := buildContact(req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	homepage, err := validate.URL(req.Homepage)
	if err != nil {
		return nil, err
	}

	var registration *RegistrationType
	if req.Registration != "" {
		r, ok := ParseRegistrationType(req.Registration)
		if !ok {
			return nil, validate.ErrRegistrationType
		}
		if err := checkRegistration(r, contact, homepage); err != nil {
			return nil, err
		}
		registration = &r
	}

	location, err := buildLocation(req)
	if err != nil {
		return nil, err
	}

	tagList := tags.Normalize(req.Tags)
	if err := orgs.CheckOwnedTags(ctx, s.orgGw, tagList, org); err != nil {
		return nil, err
	}

	creator, err := s.userDir.CreateUserFromEmail(ctx, creatorEmail)
	if err != nil {
		return nil, err
	}

	return &Event{
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Start:        start,
		End:          end,
		Location:     location,
		Contact:      contact,
		Homepage:     homepage,
		Tags:         tagList,
		CreatedBy:    creator.ID,
		Registration: registration,
		Organizer:    strings.TrimSpace(req.Organizer),
	}, nil
}

// checkRegistration enforces that the declared registration channel is
// actually reachable through the event's contact data.
func checkRegistration(r RegistrationType, contact *places.Contact, homepage string) error {
	switch r {
	case RegistrationEmail:
		if contact == nil {
			return validate.ErrContact
		}
		if contact.Email == "" {
			return validate.ErrEmail
		}
	case RegistrationPhone:
		if contact == nil {
			return validate.ErrContact
		}
		if contact.Phone == "" {
			return validate.ErrPhone
		}
	case RegistrationHomepage:
		if homepage == "" {
			return validate.ErrURL
		}
	}
	return nil
}

func buildContact(email, phone string) (*places.Contact, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validate.Email(email); err != nil {
			return nil, err
		}
	}
	c := places.Contact{Email: email, Phone: strings.TrimSpace(phone)}
	if c.IsEmpty() {
		return nil, nil
	}
	return &c, nil
}

func buildLocation(req EventRequest) (*places.Location, error) {
	address := buildAddress(req)
	if req.Lat == nil || req.Lng == nil {
		if req.Lat != nil || req.Lng != nil {
			return nil, validate.ErrInvalidPosition
		}
		if address == nil {
			return nil, nil
		}
		return &places.Location{Address: address}, nil
	}
	pos, ok := geo.NewPoint(*req.Lat, *req.Lng)
	if !ok {
		return nil, validate.ErrInvalidPosition
	}
	return &places.Location{Pos: pos, Address: address}, nil
}

func buildAddress(req EventRequest) *places.Address {
	a := places.Address{
		Street:  strings.TrimSpace(req.Street),
		Zip:     strings.TrimSpace(req.Zip),
		City:    strings.TrimSpace(req.City),
		Country: strings.TrimSpace(req.Country),
		State:   strings.TrimSpace(req.State),
	}
	if a.IsEmpty() {
		return nil
	}
	return &a
}

func (s *eventService) storeTags(ctx context.Context, tagList []string) error {
	for _, t := range tagList {
		if err := s.tagRepo.CreateTagIfNotExists(ctx, tags.Tag{ID: t}); err != nil {
			return err
		}
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *eventService) QueryEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	var createdByID string
	if q.CreatedBy != "" {
		user, err := s.userDir.TryGetUserByEmail(ctx, q.CreatedBy)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return []Event{}, nil
		}
		createdByID = user.ID
	}

	eventList, err := s.repo.GetEvents(ctx, q.StartMin, q.StartMax)
	if err != nil {
		return nil, err
	}

	var bbox *geo.Bbox
	if q.Bbox != nil {
		if !q.Bbox.IsValid() {
			return nil, validate.ErrBbox
		}
		extended := q.Bbox.Extend(bboxExtendFraction)
		bbox = &extended
	}

	filtered := make([]Event, 0, len(eventList))
	for i := range eventList {
		e := &eventList[i]
		if createdByID != "" && e.CreatedBy != createdByID {
			continue
		}
		if !e.HasAnyTag(q.Tags) {
			continue
		}
		if bbox != nil {
			if e.Location == nil || !bbox.Contains(e.Location.Pos) {
				continue
			}
		}
		filtered = append(filtered, *e)
	}
	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	return filtered, nil
}

func (s *eventService) ArchiveEvents(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.ArchiveEvents(ctx, ids, time.Now().UTC())
}

func (s *eventService) DeleteEvent(ctx context.Context, id string, requiredTags []string) error {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !event.HasAnyTag(requiredTags) {
		return ErrNotFound
	}
	return s.repo.DeleteEvent(ctx, id)
}
