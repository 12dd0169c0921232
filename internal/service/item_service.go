package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/internal/store"
	"github.com/ewhamarket/backend/pkg/kvtree"
)

// CreatedAtLayout is the timestamp format stored in created_at fields
const CreatedAtLayout = "2006-01-02 15:04:05"

// ItemStore item and like operations used by ItemService
type ItemStore interface {
	ListItems(ctx context.Context) []store.Entry[domain.Item]
	GetItem(ctx context.Context, title string) *domain.Item
	CreateItem(ctx context.Context, title string, form *domain.ItemForm, imgPath, authorID, tradeMethod, createdAt string) bool
	Purchase(ctx context.Context, title, buyerID string) (bool, string)
	UpdateItem(ctx context.Context, originalKey string, form *domain.ItemForm, imgPath, authorID, newKey string) bool
	DeleteItem(ctx context.Context, title string) bool
	ListItemsByAuthor(ctx context.Context, authorID string) []store.Entry[domain.Item]
	ListItemsByBuyer(ctx context.Context, buyerID string) []store.Entry[domain.Item]
	GetLikeCount(ctx context.Context, item string) int
	GetLikeStatus(ctx context.Context, item, user string) bool
}

// ItemService item business logic
type ItemService interface {
	List(ctx context.Context, params *domain.ItemListParams) ([]*domain.ItemSummary, *common.PageMeta)
	Get(ctx context.Context, key, viewerID string) (*domain.ItemDetail, error)
	Create(ctx context.Context, authorID string, form *domain.ItemForm, imgPath string) (string, error)
	Update(ctx context.Context, key, userID string, form *domain.ItemForm, imgPath string) (string, error)
	Delete(ctx context.Context, key, userID string) error
	Purchase(ctx context.Context, key, buyerID string) error
	ListSelling(ctx context.Context, authorID string) []*domain.ItemSummary
	ListPurchased(ctx context.Context, buyerID string) []*domain.ItemSummary
}

type itemService struct {
	items ItemStore
	now   func() time.Time
}

// NewItemService creates a new ItemService
func NewItemService(items ItemStore) ItemService {
	return &itemService{items: items, now: time.Now}
}

// List returns one page of items in insertion order.
// Category matches exactly, Keyword matches title or description.
func (s *itemService) List(ctx context.Context, params *domain.ItemListParams) ([]*domain.ItemSummary, *common.PageMeta) {
	keyword := strings.ToLower(strings.TrimSpace(params.Keyword))

	var matched []*domain.ItemSummary
	for _, e := range s.items.ListItems(ctx) {
		if params.Category != "" && e.Value.Category != params.Category {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(e.Value.Title), keyword) &&
			!strings.Contains(strings.ToLower(e.Value.Desc), keyword) {
			continue
		}
		matched = append(matched, summarize(e))
	}
	return paginate(matched, params.Page, params.PerPage)
}

func (s *itemService) Get(ctx context.Context, key, viewerID string) (*domain.ItemDetail, error) {
	item := s.items.GetItem(ctx, key)
	if item == nil {
		return nil, common.ErrItemNotFound
	}

	detail := &domain.ItemDetail{
		Item:      item,
		LikeCount: s.items.GetLikeCount(ctx, key),
		Sold:      item.IsSold(),
	}
	if viewerID != "" {
		detail.IsLiked = s.items.GetLikeStatus(ctx, key, viewerID)
	}
	return detail, nil
}

// Create stores a new item under its title. An existing item with the same
// title is replaced.
func (s *itemService) Create(ctx context.Context, authorID string, form *domain.ItemForm, imgPath string) (string, error) {
	if err := checkTitle(form.Title); err != nil {
		return "", err
	}
	tradeMethod := form.TradeMethod
	if tradeMethod == "" {
		tradeMethod = domain.TradeMethodDirect
	}
	createdAt := s.now().Format(CreatedAtLayout)

	if !s.items.CreateItem(ctx, form.Title, form, imgPath, authorID, tradeMethod, createdAt) {
		return "", common.ErrStoreUnavailable
	}
	return form.Title, nil
}

// Update rewrites an item owned by userID and returns its (possibly new) key.
func (s *itemService) Update(ctx context.Context, key, userID string, form *domain.ItemForm, imgPath string) (string, error) {
	if err := s.checkOwner(ctx, key, userID); err != nil {
		return "", err
	}
	newKey := form.Title
	if newKey == "" {
		newKey = key
	}
	if err := checkTitle(newKey); err != nil {
		return "", err
	}
	if !s.items.UpdateItem(ctx, key, form, imgPath, userID, newKey) {
		return "", common.ErrStoreUnavailable
	}
	return newKey, nil
}

func (s *itemService) Delete(ctx context.Context, key, userID string) error {
	if err := s.checkOwner(ctx, key, userID); err != nil {
		return err
	}
	if !s.items.DeleteItem(ctx, key) {
		return common.ErrStoreUnavailable
	}
	return nil
}

// checkTitle 제목이 곧 저장 키이므로 키로 쓸 수 없는 문자는 거부
func checkTitle(title string) error {
	if !kvtree.ValidKey(title) {
		return fmt.Errorf("%w: title must not contain . $ # [ ] /", common.ErrInvalidInput)
	}
	return nil
}

func (s *itemService) checkOwner(ctx context.Context, key, userID string) error {
	item := s.items.GetItem(ctx, key)
	if item == nil {
		return common.ErrItemNotFound
	}
	if item.Author != userID {
		return common.ErrForbidden
	}
	return nil
}

func (s *itemService) Purchase(ctx context.Context, key, buyerID string) error {
	item := s.items.GetItem(ctx, key)
	if item == nil {
		return common.ErrItemNotFound
	}
	if item.Author == buyerID {
		return common.ErrOwnItem
	}

	ok, msg := s.items.Purchase(ctx, key, buyerID)
	if ok {
		return nil
	}
	switch msg {
	case store.MsgNotFound:
		return common.ErrItemNotFound
	case store.MsgAlreadySold:
		return common.ErrAlreadySold
	default:
		return common.ErrStoreUnavailable
	}
}

func (s *itemService) ListSelling(ctx context.Context, authorID string) []*domain.ItemSummary {
	return summarizeAll(s.items.ListItemsByAuthor(ctx, authorID))
}

func (s *itemService) ListPurchased(ctx context.Context, buyerID string) []*domain.ItemSummary {
	return summarizeAll(s.items.ListItemsByBuyer(ctx, buyerID))
}

func summarize(e store.Entry[domain.Item]) *domain.ItemSummary {
	return &domain.ItemSummary{Key: e.Key, Item: e.Value, Sold: e.Value.IsSold()}
}

func summarizeAll(entries []store.Entry[domain.Item]) []*domain.ItemSummary {
	out := make([]*domain.ItemSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summarize(e))
	}
	return out
}
