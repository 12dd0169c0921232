package store

import (
	"context"

	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/pkg/kvtree"
)

// Purchase result messages
const (
	MsgPurchased   = "purchase complete"
	MsgNotFound    = "not found"
	MsgAlreadySold = "already sold"
	MsgUnavailable = "store unavailable"
)

// ListItems returns all items in insertion order, or nil when there are none
// or the store is unavailable.
func (s *Store) ListItems(ctx context.Context) []Entry[domain.Item] {
	var items []Entry[domain.Item]
	s.do("ListItems", itemsPath, func(t kvtree.Tree) error {
		var err error
		items, err = listRecords[domain.Item](ctx, s, t, itemsPath)
		return err
	})
	if len(items) == 0 {
		return nil
	}
	return items
}

// GetItem returns the item stored under title, or nil.
func (s *Store) GetItem(ctx context.Context, title string) *domain.Item {
	var item *domain.Item
	s.do("GetItem", title, func(t kvtree.Tree) error {
		var it domain.Item
		found, err := getRecord(ctx, t, &it, itemsPath, title)
		if found {
			item = &it
		}
		return err
	})
	return item
}

// CreateItem writes an item at item/<title>. An existing item with the same
// title is replaced; titles are not checked for uniqueness.
func (s *Store) CreateItem(ctx context.Context, title string, form *domain.ItemForm, imgPath, authorID, tradeMethod, createdAt string) bool {
	item := domain.Item{
		Title:       form.Title,
		Price:       form.Price,
		Region:      form.Region,
		Status:      form.Status,
		Desc:        form.Desc,
		Author:      authorID,
		ImgPath:     imgPath,
		Category:    form.Category,
		TradeMethod: tradeMethod,
		CreatedAt:   createdAt,
	}
	return s.do("CreateItem", title, func(t kvtree.Tree) error {
		return t.Set(ctx, item, itemsPath, title)
	})
}

// Purchase marks the item sold to buyerID. The read and the write are separate
// round trips, so two concurrent buyers can both pass the check.
func (s *Store) Purchase(ctx context.Context, title, buyerID string) (bool, string) {
	if !s.Enabled() {
		return false, MsgUnavailable
	}

	var (
		success bool
		message = MsgUnavailable
	)
	s.do("Purchase", title, func(t kvtree.Tree) error {
		var item domain.Item
		found, err := getRecord(ctx, t, &item, itemsPath, title)
		if err != nil {
			return err
		}
		if !found {
			message = MsgNotFound
			return nil
		}
		if item.IsSold() {
			message = MsgAlreadySold
			return nil
		}

		if err := t.Update(ctx, map[string]interface{}{
			"buyer":  buyerID,
			"status": domain.SoldStatus,
		}, itemsPath, title); err != nil {
			return err
		}
		success, message = true, MsgPurchased
		return nil
	})
	return success, message
}

// UpdateItem overwrites the item at originalKey, keeping its created_at and
// buyer. An empty imgPath keeps the existing image. When newKey is set and
// differs from originalKey the item is moved: the old key is removed before
// the new one is written, so a failure in between loses the item.
func (s *Store) UpdateItem(ctx context.Context, originalKey string, form *domain.ItemForm, imgPath, authorID, newKey string) bool {
	if newKey == "" {
		newKey = originalKey
	}

	updated := false
	ok := s.do("UpdateItem", originalKey, func(t kvtree.Tree) error {
		var old domain.Item
		found, err := getRecord(ctx, t, &old, itemsPath, originalKey)
		if err != nil || !found {
			return err
		}

		if imgPath == "" {
			imgPath = old.ImgPath
		}
		tradeMethod := form.TradeMethod
		if tradeMethod == "" {
			tradeMethod = old.TradeMethod
		}
		item := domain.Item{
			Title:       form.Title,
			Price:       form.Price,
			Region:      form.Region,
			Status:      form.Status,
			Desc:        form.Desc,
			Author:      authorID,
			ImgPath:     imgPath,
			Category:    form.Category,
			TradeMethod: tradeMethod,
			CreatedAt:   old.CreatedAt,
			Buyer:       old.Buyer,
		}
		if old.Buyer != "" {
			item.Status = domain.SoldStatus
		}

		if newKey != originalKey {
			if err := t.Remove(ctx, itemsPath, originalKey); err != nil {
				return err
			}
		}
		if err := t.Set(ctx, item, itemsPath, newKey); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return ok && updated
}

// DeleteItem removes the item and its likes subtree. The two removals are
// independent writes.
func (s *Store) DeleteItem(ctx context.Context, title string) bool {
	return s.do("DeleteItem", title, func(t kvtree.Tree) error {
		if err := t.Remove(ctx, itemsPath, title); err != nil {
			return err
		}
		return t.Remove(ctx, likesPath, title)
	})
}

// ListItemsByAuthor returns the items listed by authorID in insertion order.
func (s *Store) ListItemsByAuthor(ctx context.Context, authorID string) []Entry[domain.Item] {
	return filterItems(s.ListItems(ctx), func(it *domain.Item) bool {
		return it.Author == authorID
	})
}

// ListItemsByBuyer returns the items purchased by buyerID in insertion order.
func (s *Store) ListItemsByBuyer(ctx context.Context, buyerID string) []Entry[domain.Item] {
	return filterItems(s.ListItems(ctx), func(it *domain.Item) bool {
		return it.Buyer == buyerID
	})
}

func filterItems(items []Entry[domain.Item], keep func(*domain.Item) bool) []Entry[domain.Item] {
	var out []Entry[domain.Item]
	for _, e := range items {
		if keep(e.Value) {
			out = append(out, e)
		}
	}
	return out
}
