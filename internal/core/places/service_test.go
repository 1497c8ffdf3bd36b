package places

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/tags"
	"Placemap/internal/core/validate"
)

type mockPlaceRepo struct {
	mock.Mock
}

func (m *mockPlaceRepo) CreateOrUpdatePlace(ctx context.Context, place *Place) error {
	args := m.Called(ctx, place)
	return args.Error(0)
}

func (m *mockPlaceRepo) GetPlace(ctx context.Context, id string) (*Place, ReviewStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*Place), args.Get(1).(ReviewStatus), args.Error(2)
}

func (m *mockPlaceRepo) GetPlaces(ctx context.Context, ids []string) ([]PlaceRevision, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PlaceRevision), args.Error(1)
}

func (m *mockPlaceRepo) GetPlaceHistory(ctx context.Context, id string) (*PlaceHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlaceHistory), args.Error(1)
}

func (m *mockPlaceRepo) ReviewPlaces(ctx context.Context, ids []string, review Review) (int, error) {
	args := m.Called(ctx, ids, review)
	return args.Int(0), args.Error(1)
}

func (m *mockPlaceRepo) AllPlaces(ctx context.Context) ([]PlaceRevision, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PlaceRevision), args.Error(1)
}

func (m *mockPlaceRepo) CountPlaces(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockTagRepo struct {
	mock.Mock
}

func (m *mockTagRepo) CreateTagIfNotExists(ctx context.Context, tag tags.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *mockTagRepo) AllTags(ctx context.Context) ([]tags.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tags.Tag), args.Error(1)
}

func (m *mockTagRepo) CountTags(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockTagRepo) MostPopularTags(ctx context.Context, limit int) ([]tags.TagFrequency, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tags.TagFrequency), args.Error(1)
}

type mockOrgGateway struct {
	mock.Mock
}

func (m *mockOrgGateway) CreateOrg(ctx context.Context, org *orgs.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *mockOrgGateway) GetOrgByAPIToken(ctx context.Context, token string) (*orgs.Organization, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orgs.Organization), args.Error(1)
}

func (m *mockOrgGateway) GetAllTagsOwnedByOrgs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockOrgGateway) GetOrgsOwningTags(ctx context.Context, tagList []string) ([]*orgs.Organization, error) {
	args := m.Called(ctx, tagList)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orgs.Organization), args.Error(1)
}

func (m *mockOrgGateway) AddPendingAuthorizations(ctx context.Context, orgIDs []string, pending orgs.PendingAuthorization) error {
	args := m.Called(ctx, orgIDs, pending)
	return args.Error(0)
}

func newTestService() (*mockPlaceRepo, *mockTagRepo, *mockOrgGateway, Service) {
	repo := new(mockPlaceRepo)
	tagRepo := new(mockTagRepo)
	orgGw := new(mockOrgGateway)
	return repo, tagRepo, orgGw, NewPlaceService(repo, tagRepo, orgGw)
}

func validNewPlace() NewPlaceRequest {
	return NewPlaceRequest{
		Title:       "foo",
		Description: "bar",
		Lat:         48.2,
		Lng:         7.9,
		License:     "CC0-1.0",
	}
}

func TestCreatePlace_Valid(t *testing.T) {
	repo, tagRepo, orgGw, svc := newTestService()
	orgGw.On("GetOrgsOwningTags", mock.Anything, mock.Anything).Return([]*orgs.Organization{}, nil)
	tagRepo.On("CreateTagIfNotExists", mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateOrUpdatePlace", mock.Anything, mock.Anything).Return(nil)

	req := validNewPlace()
	req.Tags = []string{"#bio fair", "bio"}
	place, err := svc.CreatePlace(context.Background(), req, "test@example.com", nil)
	require.NoError(t, err)

	assert.Len(t, place.ID, 32)
	assert.Equal(t, uint64(1), place.Revision)
	assert.Equal(t, "CC0-1.0", place.License)
	assert.Equal(t, []string{"bio", "fair"}, place.Tags)
	assert.Equal(t, "test@example.com", place.Created.By)
	repo.AssertExpectations(t)
}

func TestCreatePlace_RequiresLicense(t *testing.T) {
	_, _, _, svc := newTestService()
	req := validNewPlace()
	req.License = " "
	_, err := svc.CreatePlace(context.Background(), req, "", nil)
	assert.ErrorIs(t, err, validate.ErrLicense)
}

func TestCreatePlace_InvalidPosition(t *testing.T) {
	_, _, _, svc := newTestService()
	req := validNewPlace()
	req.Lat = 91.0
	_, err := svc.CreatePlace(context.Background(), req, "", nil)
	assert.ErrorIs(t, err, validate.ErrInvalidPosition)
}

func TestCreatePlace_InvalidEmail(t *testing.T) {
	_, _, orgGw, svc := newTestService()
	orgGw.On("GetOrgsOwningTags", mock.Anything, mock.Anything).Return([]*orgs.Organization{}, nil)
	req := validNewPlace()
	req.Email = "not-ok"
	_, err := svc.CreatePlace(context.Background(), req, "", nil)
	assert.ErrorIs(t, err, validate.ErrEmail)
}

func TestCreatePlace_OwnedTagWithoutToken(t *testing.T) {
	_, _, orgGw, svc := newTestService()
	owner := &orgs.Organization{ID: "org-1", OwnedTags: []string{"bio"}}
	orgGw.On("GetOrgsOwningTags", mock.Anything, []string{"bio"}).Return([]*orgs.Organization{owner}, nil)

	req := validNewPlace()
	req.Tags = []string{"bio"}
	_, err := svc.CreatePlace(context.Background(), req, "", nil)
	assert.ErrorIs(t, err, orgs.ErrOwnedTag)
}

func TestUpdatePlace_Valid(t *testing.T) {
	repo, tagRepo, orgGw, svc := newTestService()
	old := &Place{
		ID:       "p1",
		License:  "CC0-1.0",
		Revision: 1,
		Title:    "foo",
		Location: Location{Pos: geo.Point{Lat: 48.2, Lng: 7.9}},
		Tags:     []string{"bio", "fair"},
	}
	repo.On("GetPlace", mock.Anything, "p1").Return(old, StatusCreated, nil)
	orgGw.On("GetOrgsOwningTags", mock.Anything, mock.Anything).Return([]*orgs.Organization{}, nil)
	tagRepo.On("CreateTagIfNotExists", mock.Anything, tags.Tag{ID: "vegan"}).Return(nil)
	repo.On("CreateOrUpdatePlace", mock.Anything, mock.MatchedBy(func(p *Place) bool {
		return p.Revision == 2 && p.License == "CC0-1.0"
	})).Return(nil)

	req := UpdatePlaceRequest{
		Version:     2,
		Title:       "foo",
		Description: "new",
		Lat:         48.2,
		Lng:         7.9,
		Street:      "street",
		Tags:        []string{"vegan"},
	}
	place, err := svc.UpdatePlace(context.Background(), "p1", req, "test@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), place.Revision)
	assert.Equal(t, []string{"vegan"}, place.Tags)
	assert.Equal(t, "street", place.Location.Address.Street)
	repo.AssertExpectations(t)
}

func TestUpdatePlace_InvalidVersion(t *testing.T) {
	repo, _, _, svc := newTestService()
	old := &Place{ID: "p1", License: "CC0-1.0", Revision: 3}
	repo.On("GetPlace", mock.Anything, "p1").Return(old, StatusCreated, nil)

	req := UpdatePlaceRequest{Version: 3, Title: "foo", Lat: 0, Lng: 0}
	_, err := svc.UpdatePlace(context.Background(), "p1", req, "", nil)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	repo.AssertNotCalled(t, "CreateOrUpdatePlace", mock.Anything, mock.Anything)
}

func TestUpdatePlace_NotFound(t *testing.T) {
	repo, _, _, svc := newTestService()
	repo.On("GetPlace", mock.Anything, "missing").Return(nil, StatusCreated, ErrNotFound)

	req := UpdatePlaceRequest{Version: 4, Title: "foo"}
	_, err := svc.UpdatePlace(context.Background(), "missing", req, "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePlace_OwnedTagAuthorizedIsPending(t *testing.T) {
	repo, tagRepo, orgGw, svc := newTestService()
	owner := &orgs.Organization{ID: "org-1", APIToken: "secret", OwnedTags: []string{"bio"}}
	old := &Place{
		ID:       "p1",
		License:  "CC0-1.0",
		Revision: 1,
		Location: Location{Pos: geo.Point{Lat: 48.2, Lng: 7.9}},
	}
	repo.On("GetPlace", mock.Anything, "p1").Return(old, StatusCreated, nil)
	orgGw.On("GetOrgsOwningTags", mock.Anything, []string{"bio"}).Return([]*orgs.Organization{owner}, nil)
	tagRepo.On("CreateTagIfNotExists", mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateOrUpdatePlace", mock.Anything, mock.Anything).Return(nil)
	orgGw.On("AddPendingAuthorizations", mock.Anything, []string{"org-1"},
		mock.MatchedBy(func(p orgs.PendingAuthorization) bool {
			return p.PlaceID == "p1" && p.LastAuthorizedRev == 1
		})).Return(nil)

	req := UpdatePlaceRequest{Version: 2, Title: "foo", Lat: 48.2, Lng: 7.9, Tags: []string{"bio"}}
	_, err := svc.UpdatePlace(context.Background(), "p1", req, "", owner)
	require.NoError(t, err)
	orgGw.AssertExpectations(t)
}

func TestReviewPlaces(t *testing.T) {
	repo, _, _, svc := newTestService()
	repo.On("ReviewPlaces", mock.Anything, []string{"p1", "p2"},
		mock.MatchedBy(func(r Review) bool {
			return r.Status == StatusConfirmed && r.CreatedBy == "scout-1"
		})).Return(2, nil)

	n, err := svc.ReviewPlaces(context.Background(), []string{"p1", "p2"}, StatusConfirmed, "scout-1", "api", "looks good")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
