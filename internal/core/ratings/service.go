package ratings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service defines the business logic for rating places and commenting on
// ratings.
type Service interface {
	// RatePlace creates a rating for a place, optionally with an initial
	// comment, and returns the rating.
	RatePlace(ctx context.Context, req RateRequest) (*Rating, error)

	// CommentRating attaches a comment to an existing rating.
	CommentRating(ctx context.Context, ratingID, text string) (*Comment, error)

	// LoadRatingsWithComments resolves ratings with their live comments.
	LoadRatingsWithComments(ctx context.Context, ids []string) ([]RatingWithComments, error)

	// AvgRatingsForPlace computes the live rating averages of a place.
	AvgRatingsForPlace(ctx context.Context, placeID string) (AvgRatings, error)

	// ArchiveRatings archives ratings and their comments.
	ArchiveRatings(ctx context.Context, ids []string, archivedBy string) (int, error)

	// ArchiveRatingsOfPlaces archives every live rating of the given
	// places, cascading to comments.
	ArchiveRatingsOfPlaces(ctx context.Context, placeIDs []string, archivedBy string) (int, error)

	// ArchiveComments archives comments.
	ArchiveComments(ctx context.Context, ids []string, archivedBy string) (int, error)
}

// RateRequest carries the decoded payload for rating a place.
type RateRequest struct {
	PlaceID string `json:"entry"`
	Title   string `json:"title"`
	Value   int    `json:"value"`
	Context string `json:"context"`
	Comment string `json:"comment,omitempty"`
	Source  string `json:"source,omitempty"`
}

type ratingService struct {
	repo     Repository
	comments CommentRepository
}

// Compile-time interface compliance check.
var _ Service = (*ratingService)(nil)

// NewRatingService creates the rating business logic.
func NewRatingService(repo Repository, comments CommentRepository) Service {
	return &ratingService{repo: repo, comments: comments}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *ratingService) RatePlace(ctx context.Context, req RateRequest) (*Rating, error) {
	if req.Value < MinRatingValue || req.Value > MaxRatingValue {
		return nil, ErrValue
	}
	rctx, ok := ParseContext(req.Context)
	if !ok {
		return nil, ErrContext
	}
	rating := &Rating{
		ID:        newID(),
		PlaceID:   req.PlaceID,
		CreatedAt: time.Now().UTC(),
		Title:     req.Title,
		Value:     req.Value,
		Context:   rctx,
		Source:    req.Source,
	}
	if err := s.repo.CreateRating(ctx, rating); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Comment) != "" {
		comment := &Comment{
			ID:        newID(),
			RatingID:  rating.ID,
			CreatedAt: rating.CreatedAt,
			Text:      req.Comment,
		}
		if err := s.comments.CreateComment(ctx, comment); err != nil {
			return nil, err
		}
	}
	return rating, nil
}

func (s *ratingService) CommentRating(ctx context.Context, ratingID, text string) (*Comment, error) {
	if _, err := s.repo.GetRating(ctx, ratingID); err != nil {
		return nil, err
	}
	comment := &Comment{
		ID:        newID(),
		RatingID:  ratingID,
		CreatedAt: time.Now().UTC(),
		Text:      text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ratingService) LoadRatingsWithComments(ctx context.Context, ids []string) ([]RatingWithComments, error) {
	ratingList, err := s.repo.GetRatings(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]RatingWithComments, 0, len(ratingList))
	for _, r := range ratingList {
		comments, err := s.comments.CommentsForRating(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RatingWithComments{Rating: r, Comments: comments})
	}
	return out, nil
}

func (s *ratingService) AvgRatingsForPlace(ctx context.Context, placeID string) (AvgRatings, error) {
	ratingList, err := s.repo.RatingsForPlace(ctx, placeID)
	if err != nil {
		return AvgRatings{}, err
	}
	return Avg(ratingList), nil
}

func (s *ratingService) ArchiveRatings(ctx context.Context, ids []string, archivedBy string) (int, error) {
	return s.repo.ArchiveRatings(ctx, ids, time.Now().UTC(), archivedBy)
}

func (s *ratingService) ArchiveRatingsOfPlaces(ctx context.Context, placeIDs []string, archivedBy string) (int, error) {
	return s.repo.ArchiveRatingsOfPlaces(ctx, placeIDs, time.Now().UTC(), archivedBy)
}

func (s *ratingService) ArchiveComments(ctx context.Context, ids []string, archivedBy string) (int, error) {
	return s.comments.ArchiveComments(ctx, ids, time.Now().UTC(), archivedBy)
}
