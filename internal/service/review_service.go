package service

import (
	"context"
	"time"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/internal/store"
)

// ReviewStore review operations used by ReviewService
type ReviewStore interface {
	GetItem(ctx context.Context, title string) *domain.Item
	AddReview(ctx context.Context, itemTitle string, form *domain.ReviewForm, imgPath, writerID, createdAt string) string
	ListReviews(ctx context.Context) []store.Entry[domain.Review]
	GetReview(ctx context.Context, key string) *domain.Review
	ReviewExists(ctx context.Context, itemTitle, writerID string) bool
	ListReviewsByItem(ctx context.Context, itemTitle string) []store.Entry[domain.Review]
	ListReviewsByWriter(ctx context.Context, writerID string) []store.Entry[domain.Review]
}

// ReviewService review business logic
type ReviewService interface {
	Write(ctx context.Context, itemTitle, writerID string, form *domain.ReviewForm, imgPath string) (string, error)
	Exists(ctx context.Context, itemTitle, writerID string) bool
	List(ctx context.Context, page, perPage int) ([]*domain.ReviewEntry, *common.PageMeta)
	Get(ctx context.Context, key string) (*domain.Review, error)
	ListByItem(ctx context.Context, itemTitle string) []*domain.ReviewEntry
	ListByWriter(ctx context.Context, writerID string) []*domain.ReviewEntry
}

type reviewService struct {
	reviews ReviewStore
	now     func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews ReviewStore) ReviewService {
	return &reviewService{reviews: reviews, now: time.Now}
}

// Write stores the review of the item's buyer. Writing again replaces the
// earlier review.
func (s *reviewService) Write(ctx context.Context, itemTitle, writerID string, form *domain.ReviewForm, imgPath string) (string, error) {
	item := s.reviews.GetItem(ctx, itemTitle)
	if item == nil {
		return "", common.ErrItemNotFound
	}
	if item.Buyer != writerID {
		return "", common.ErrReviewNotAllowed
	}

	key := s.reviews.AddReview(ctx, itemTitle, form, imgPath, writerID, s.now().Format(CreatedAtLayout))
	if key == "" {
		return "", common.ErrStoreUnavailable
	}
	return key, nil
}

func (s *reviewService) Exists(ctx context.Context, itemTitle, writerID string) bool {
	return s.reviews.ReviewExists(ctx, itemTitle, writerID)
}

func (s *reviewService) List(ctx context.Context, page, perPage int) ([]*domain.ReviewEntry, *common.PageMeta) {
	return paginate(reviewEntries(s.reviews.ListReviews(ctx)), page, perPage)
}

func (s *reviewService) Get(ctx context.Context, key string) (*domain.Review, error) {
	review := s.reviews.GetReview(ctx, key)
	if review == nil {
		return nil, common.ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) ListByItem(ctx context.Context, itemTitle string) []*domain.ReviewEntry {
	return reviewEntries(s.reviews.ListReviewsByItem(ctx, itemTitle))
}

func (s *reviewService) ListByWriter(ctx context.Context, writerID string) []*domain.ReviewEntry {
	return reviewEntries(s.reviews.ListReviewsByWriter(ctx, writerID))
}

func reviewEntries(entries []store.Entry[domain.Review]) []*domain.ReviewEntry {
	out := make([]*domain.ReviewEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &domain.ReviewEntry{Key: e.Key, Review: e.Value})
	}
	return out
}
