package service

import (
	"context"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
)

// LikeStore like-edge operations used by WishService
type LikeStore interface {
	GetItem(ctx context.Context, title string) *domain.Item
	GetLikeStatus(ctx context.Context, item, user string) bool
	GetLikeCount(ctx context.Context, item string) int
	SetLikeStatus(ctx context.Context, item, user string, liked bool) bool
	ToggleLike(ctx context.Context, item, user string) (ok bool, liked bool)
	GetLikedItemsByUser(ctx context.Context, user string) []string
}

// WishStatus 찜 상태 응답
type WishStatus struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// WishService 찜하기 비즈니스 로직
type WishService interface {
	Toggle(ctx context.Context, itemTitle, userID string) (*WishStatus, error)
	Set(ctx context.Context, itemTitle, userID string, liked bool) (*WishStatus, error)
	Status(ctx context.Context, itemTitle, userID string) *WishStatus
	ListLiked(ctx context.Context, userID string) []*domain.ItemSummary
}

type wishService struct {
	likes LikeStore
}

// NewWishService creates a new WishService
func NewWishService(likes LikeStore) WishService {
	return &wishService{likes: likes}
}

// Toggle 찜하기 토글 (추가/제거)
func (s *wishService) Toggle(ctx context.Context, itemTitle, userID string) (*WishStatus, error) {
	if s.likes.GetItem(ctx, itemTitle) == nil {
		return nil, common.ErrItemNotFound
	}
	ok, liked := s.likes.ToggleLike(ctx, itemTitle, userID)
	if !ok {
		return nil, common.ErrStoreUnavailable
	}
	return &WishStatus{Liked: liked, LikeCount: s.likes.GetLikeCount(ctx, itemTitle)}, nil
}

// Set 찜 상태를 지정한 값으로 설정
func (s *wishService) Set(ctx context.Context, itemTitle, userID string, liked bool) (*WishStatus, error) {
	if s.likes.GetItem(ctx, itemTitle) == nil {
		return nil, common.ErrItemNotFound
	}
	if !s.likes.SetLikeStatus(ctx, itemTitle, userID, liked) {
		return nil, common.ErrStoreUnavailable
	}
	return &WishStatus{Liked: liked, LikeCount: s.likes.GetLikeCount(ctx, itemTitle)}, nil
}

func (s *wishService) Status(ctx context.Context, itemTitle, userID string) *WishStatus {
	status := &WishStatus{LikeCount: s.likes.GetLikeCount(ctx, itemTitle)}
	if userID != "" {
		status.Liked = s.likes.GetLikeStatus(ctx, itemTitle, userID)
	}
	return status
}

// ListLiked 찜한 상품 목록. 삭제된 상품은 건너뜀
func (s *wishService) ListLiked(ctx context.Context, userID string) []*domain.ItemSummary {
	titles := s.likes.GetLikedItemsByUser(ctx, userID)
	out := make([]*domain.ItemSummary, 0, len(titles))
	for _, title := range titles {
		item := s.likes.GetItem(ctx, title)
		if item == nil {
			continue
		}
		out = append(out, &domain.ItemSummary{Key: title, Item: item, Sold: item.IsSold()})
	}
	return out
}
