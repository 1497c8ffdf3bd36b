package subscriptions

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/validate"
)

type subscriptionService struct {
	repo Repository
}

// Compile-time interface compliance check.
var _ Service = (*subscriptionService)(nil)

// NewSubscriptionService creates the subscription business logic.
func NewSubscriptionService(repo Repository) Service {
	return &subscriptionService{repo: repo}
}

func (s *subscriptionService) SubscribeToBbox(ctx context.Context, email string, bbox geo.Bbox) (*BboxSubscription, error) {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if !bbox.IsValid() {
		return nil, validate.ErrBbox
	}
	// Subscribing again replaces any previous subscription.
	if _, err := s.repo.DeleteBboxSubscriptionsByEmail(ctx, email); err != nil {
		return nil, err
	}
	sub := &BboxSubscription{
		ID:    strings.ReplaceAll(uuid.NewString(), "-", ""),
		Email: email,
		Bbox:  bbox,
	}
	if err := s.repo.CreateBboxSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) UnsubscribeAll(ctx context.Context, email string) error {
	_, err := s.repo.DeleteBboxSubscriptionsByEmail(ctx, email)
	return err
}

func (s *subscriptionService) SubscriptionsByEmail(ctx context.Context, email string) ([]BboxSubscription, error) {
	return s.repo.GetBboxSubscriptionsByEmail(ctx, email)
}

func (s *subscriptionService) EmailAddressesByCoordinate(ctx context.Context, pos geo.Point) ([]string, error) {
	if !pos.IsValid() {
		return nil, validate.ErrInvalidPosition
	}
	subs, err := s.repo.AllBboxSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var emails []string
	for _, sub := range subs {
		if !sub.Bbox.Contains(pos) {
			continue
		}
		if _, ok := seen[sub.Email]; ok {
			continue
		}
		seen[sub.Email] = struct{}{}
		emails = append(emails, sub.Email)
	}
	sort.Strings(emails)
	return emails, nil
}
