package subscriptions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/validate"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) CreateBboxSubscription(ctx context.Context, sub *BboxSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) GetBboxSubscriptionsByEmail(ctx context.Context, email string) ([]BboxSubscription, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BboxSubscription), args.Error(1)
}

func (m *mockSubscriptionRepo) DeleteBboxSubscriptionsByEmail(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *mockSubscriptionRepo) AllBboxSubscriptions(ctx context.Context) ([]BboxSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BboxSubscription), args.Error(1)
}

func bboxAround(latMin, lngMin, latMax, lngMax float64) geo.Bbox {
	b, ok := geo.NewBbox(geo.Point{Lat: latMin, Lng: lngMin}, geo.Point{Lat: latMax, Lng: lngMax})
	if !ok {
		panic("invalid test bbox")
	}
	return b
}

func TestSubscribeToBbox_ReplacesExisting(t *testing.T) {
	repo := new(mockSubscriptionRepo)
	svc := NewSubscriptionService(repo)

	repo.On("DeleteBboxSubscriptionsByEmail", mock.Anything, "a@foo.bar").Return(1, nil)
	repo.On("CreateBboxSubscription", mock.Anything, mock.MatchedBy(func(s *BboxSubscription) bool {
		return s.Email == "a@foo.bar" && len(s.ID) == 32
	})).Return(nil)

	sub, err := svc.SubscribeToBbox(context.Background(), "a@foo.bar", bboxAround(47, 10, 49, 12))
	require.NoError(t, err)
	assert.Equal(t, "a@foo.bar", sub.Email)
	repo.AssertExpectations(t)
}

func TestSubscribeToBbox_RejectsBadInput(t *testing.T) {
	svc := NewSubscriptionService(new(mockSubscriptionRepo))

	_, err := svc.SubscribeToBbox(context.Background(), "not-an-email", bboxAround(47, 10, 49, 12))
	assert.ErrorIs(t, err, validate.ErrEmail)

	// South-west corner north of the north-east corner.
	bad := geo.Bbox{
		SouthWest: geo.Point{Lat: 49, Lng: 10},
		NorthEast: geo.Point{Lat: 47, Lng: 12},
	}
	_, err = svc.SubscribeToBbox(context.Background(), "a@foo.bar", bad)
	assert.ErrorIs(t, err, validate.ErrBbox)
}

func TestEmailAddressesByCoordinate(t *testing.T) {
	repo := new(mockSubscriptionRepo)
	svc := NewSubscriptionService(repo)

	repo.On("AllBboxSubscriptions", mock.Anything).Return([]BboxSubscription{
		{ID: "s1", Email: "b@foo.bar", Bbox: bboxAround(47, 10, 49, 12)},
		{ID: "s2", Email: "a@foo.bar", Bbox: bboxAround(40, 0, 50, 20)},
		{ID: "s3", Email: "a@foo.bar", Bbox: bboxAround(48, 11, 48.5, 11.8)},
		{ID: "s4", Email: "c@foo.bar", Bbox: bboxAround(-10, -10, 10, 10)},
	}, nil)

	emails, err := svc.EmailAddressesByCoordinate(context.Background(), geo.Point{Lat: 48.2, Lng: 11.5})
	require.NoError(t, err)
	// Deduplicated and sorted; the subscription far away does not match.
	assert.Equal(t, []string{"a@foo.bar", "b@foo.bar"}, emails)
}

func TestEmailAddressesByCoordinate_NoMatch(t *testing.T) {
	repo := new(mockSubscriptionRepo)
	svc := NewSubscriptionService(repo)
	repo.On("AllBboxSubscriptions", mock.Anything).Return([]BboxSubscription{}, nil)

	emails, err := svc.EmailAddressesByCoordinate(context.Background(), geo.Point{Lat: 0, Lng: 0})
	require.NoError(t, err)
	assert.Empty(t, emails)
}
