package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/orgs"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
	"Placemap/internal/core/validate"
	"Placemap/internal/flows"
)

type mockPlaceService struct {
	mock.Mock
}

func (m *mockPlaceService) CreatePlace(ctx context.Context, req places.NewPlaceRequest, createdBy string, org *orgs.Organization) (*places.Place, error) {
	args := m.Called(ctx, req, createdBy, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.Place), args.Error(1)
}

func (m *mockPlaceService) UpdatePlace(ctx context.Context, id string, req places.UpdatePlaceRequest, updatedBy string, org *orgs.Organization) (*places.Place, error) {
	args := m.Called(ctx, id, req, updatedBy, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.Place), args.Error(1)
}

func (m *mockPlaceService) ReviewPlaces(ctx context.Context, ids []string, status places.ReviewStatus, reviewedBy, reviewContext, comment string) (int, error) {
	args := m.Called(ctx, ids, status, reviewedBy, reviewContext, comment)
	return args.Int(0), args.Error(1)
}

func (m *mockPlaceService) GetPlace(ctx context.Context, id string) (*places.PlaceRevision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.PlaceRevision), args.Error(1)
}

func (m *mockPlaceService) GetPlaces(ctx context.Context, ids []string) ([]places.PlaceRevision, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.PlaceRevision), args.Error(1)
}

func (m *mockPlaceService) GetPlaceHistory(ctx context.Context, id string) (*places.PlaceHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.PlaceHistory), args.Error(1)
}

func (m *mockPlaceService) FindDuplicates(ctx context.Context) ([]places.Duplicate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.Duplicate), args.Error(1)
}

func (m *mockPlaceService) CountPlaces(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockRatingService struct {
	mock.Mock
}

func (m *mockRatingService) RatePlace(ctx context.Context, req ratings.RateRequest) (*ratings.Rating, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratings.Rating), args.Error(1)
}

func (m *mockRatingService) CommentRating(ctx context.Context, ratingID, text string) (*ratings.Comment, error) {
	args := m.Called(ctx, ratingID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratings.Comment), args.Error(1)
}

func (m *mockRatingService) LoadRatingsWithComments(ctx context.Context, ids []string) ([]ratings.RatingWithComments, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ratings.RatingWithComments), args.Error(1)
}

func (m *mockRatingService) AvgRatingsForPlace(ctx context.Context, placeID string) (ratings.AvgRatings, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(ratings.AvgRatings), args.Error(1)
}

func (m *mockRatingService) ArchiveRatings(ctx context.Context, ids []string, archivedBy string) (int, error) {
	args := m.Called(ctx, ids, archivedBy)
	return args.Int(0), args.Error(1)
}

func (m *mockRatingService) ArchiveRatingsOfPlaces(ctx context.Context, placeIDs []string, archivedBy string) (int, error) {
	args := m.Called(ctx, placeIDs, archivedBy)
	return args.Int(0), args.Error(1)
}

func (m *mockRatingService) ArchiveComments(ctx context.Context, ids []string, archivedBy string) (int, error) {
	args := m.Called(ctx, ids, archivedBy)
	return args.Int(0), args.Error(1)
}

type noopIndexer struct{}

func (noopIndexer) AddOrUpdatePlace(*places.Place, ratings.AvgRatings) error { return nil }
func (noopIndexer) RemovePlaceByID(string) error                             { return nil }
func (noopIndexer) Flush() error                                             { return nil }
func (noopIndexer) QueryPlaces(search.Query, int) ([]search.IndexedPlace, error) {
	return nil, nil
}

func newEntryTestHandler(placeSvc *mockPlaceService, ratingSvc *mockRatingService) *EntryHandler {
	f := &flows.Flows{
		Places:  placeSvc,
		Ratings: ratingSvc,
		Index:   noopIndexer{},
	}
	return NewEntryHandler(f, placeSvc, ratingSvc, noopIndexer{})
}

func newEntryRouter(h *EntryHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/entries", h.HandleCreate)
	r.Get("/entries/{ids}", h.HandleGet)
	r.Put("/entries/{ids}", h.HandleUpdate)
	r.Get("/duplicates", h.HandleDuplicates)
	return r
}

func TestHandleCreateEntry_InvalidBody(t *testing.T) {
	h := newEntryTestHandler(new(mockPlaceService), new(mockRatingService))
	r := newEntryRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateEntry_ParameterErrorMapsTo400(t *testing.T) {
	placeSvc := new(mockPlaceService)
	placeSvc.On("CreatePlace", mock.Anything, mock.Anything, "", (*orgs.Organization)(nil)).
		Return(nil, validate.ErrLicense)
	h := newEntryTestHandler(placeSvc, new(mockRatingService))
	r := newEntryRouter(h)

	body, _ := json.Marshal(places.NewPlaceRequest{Title: "x", Lat: 1, Lng: 2})
	req := httptest.NewRequest(http.MethodPost, "/entries", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	placeSvc.AssertExpectations(t)
}

func TestHandleUpdateEntry_StaleVersionMapsTo500(t *testing.T) {
	placeSvc := new(mockPlaceService)
	placeSvc.On("UpdatePlace", mock.Anything, "abc", mock.Anything, "", (*orgs.Organization)(nil)).
		Return(nil, places.ErrInvalidVersion)
	h := newEntryTestHandler(placeSvc, new(mockRatingService))
	r := newEntryRouter(h)

	body, _ := json.Marshal(places.UpdatePlaceRequest{Version: 2, Title: "x", Lat: 1, Lng: 2})
	req := httptest.NewRequest(http.MethodPut, "/entries/abc", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// A lost-update conflict is a repository error, not a bad parameter.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleGetEntries_UnknownIDMapsTo404(t *testing.T) {
	placeSvc := new(mockPlaceService)
	placeSvc.On("GetPlaces", mock.Anything, []string{"missing"}).
		Return([]places.PlaceRevision{}, nil)
	h := newEntryTestHandler(placeSvc, new(mockRatingService))
	r := newEntryRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/entries/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetEntries_IncludesAvgRatings(t *testing.T) {
	placeSvc := new(mockPlaceService)
	ratingSvc := new(mockRatingService)
	placeSvc.On("GetPlaces", mock.Anything, []string{"p1"}).Return([]places.PlaceRevision{
		{Place: places.Place{ID: "p1", Title: "Laden"}, Status: places.StatusConfirmed},
	}, nil)
	ratingSvc.On("AvgRatingsForPlace", mock.Anything, "p1").
		Return(ratings.AvgRatings{Diversity: 2}, nil)
	h := newEntryTestHandler(placeSvc, ratingSvc)
	r := newEntryRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/entries/p1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []entryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, float64(2), got[0].AvgRatings.Diversity)
}

func TestHandleDuplicates_EmptyResultIsEmptyArray(t *testing.T) {
	placeSvc := new(mockPlaceService)
	placeSvc.On("FindDuplicates", mock.Anything).Return(nil, nil)
	h := newEntryTestHandler(placeSvc, new(mockRatingService))
	r := newEntryRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/duplicates", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
