package store

import (
	"context"

	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/pkg/kvtree"
)

// ReviewKey builds the storage key of the review writerID left on itemTitle.
// AddReview and ReviewExists must both go through it.
func ReviewKey(itemTitle, writerID string) string {
	return itemTitle + "_" + writerID
}

// AddReview writes the review at review/<itemTitle>_<writerID> and returns the
// key, or "" on failure. A second review by the same writer for the same item
// replaces the first.
func (s *Store) AddReview(ctx context.Context, itemTitle string, form *domain.ReviewForm, imgPath, writerID, createdAt string) string {
	key := ReviewKey(itemTitle, writerID)
	review := domain.Review{
		Title:     form.Title,
		Rate:      form.Rate,
		Content:   form.Content,
		ImgPath:   imgPath,
		ItemName:  itemTitle,
		WriterID:  writerID,
		CreatedAt: createdAt,
	}
	ok := s.do("AddReview", key, func(t kvtree.Tree) error {
		return t.Set(ctx, review, reviewsPath, key)
	})
	if !ok {
		return ""
	}
	return key
}

// ListReviews returns all reviews in insertion order, or nil.
func (s *Store) ListReviews(ctx context.Context) []Entry[domain.Review] {
	var reviews []Entry[domain.Review]
	s.do("ListReviews", reviewsPath, func(t kvtree.Tree) error {
		var err error
		reviews, err = listRecords[domain.Review](ctx, s, t, reviewsPath)
		return err
	})
	if len(reviews) == 0 {
		return nil
	}
	return reviews
}

// GetReview returns the review stored under key, or nil.
func (s *Store) GetReview(ctx context.Context, key string) *domain.Review {
	var review *domain.Review
	s.do("GetReview", key, func(t kvtree.Tree) error {
		var r domain.Review
		found, err := getRecord(ctx, t, &r, reviewsPath, key)
		if found {
			review = &r
		}
		return err
	})
	return review
}

// ReviewExists reports whether writerID already reviewed itemTitle.
func (s *Store) ReviewExists(ctx context.Context, itemTitle, writerID string) bool {
	key := ReviewKey(itemTitle, writerID)
	exists := false
	s.do("ReviewExists", key, func(t kvtree.Tree) error {
		var err error
		exists, err = kvtree.Exists(ctx, t, reviewsPath, key)
		return err
	})
	return exists
}

// ListReviewsByItem returns the reviews written for itemTitle.
func (s *Store) ListReviewsByItem(ctx context.Context, itemTitle string) []Entry[domain.Review] {
	var out []Entry[domain.Review]
	for _, e := range s.ListReviews(ctx) {
		if e.Value.ItemName == itemTitle {
			out = append(out, e)
		}
	}
	return out
}

// ListReviewsByWriter returns the reviews written by writerID.
func (s *Store) ListReviewsByWriter(ctx context.Context, writerID string) []Entry[domain.Review] {
	var out []Entry[domain.Review]
	for _, e := range s.ListReviews(ctx) {
		if e.Value.WriterID == writerID {
			out = append(out, e)
		}
	}
	return out
}
