package store

import (
	"context"
	"encoding/json"

	"github.com/ewhamarket/backend/pkg/kvtree"
)

// Likes are stored as likes/<item>/<user> = true. An unliked pair has no key
// at all, so counts are the number of present children.

// GetLikeStatus reports whether user likes item.
func (s *Store) GetLikeStatus(ctx context.Context, item, user string) bool {
	liked := false
	s.do("GetLikeStatus", item+"/"+user, func(t kvtree.Tree) error {
		var err error
		liked, err = kvtree.Exists(ctx, t, likesPath, item, user)
		return err
	})
	return liked
}

// GetLikeCount returns how many users like item; 0 when nobody does.
func (s *Store) GetLikeCount(ctx context.Context, item string) int {
	count := 0
	s.do("GetLikeCount", item, func(t kvtree.Tree) error {
		children, err := t.Children(ctx, likesPath, item)
		if err != nil {
			return err
		}
		count = len(children)
		return nil
	})
	return count
}

// SetLikeStatus writes the like edge when liked is true and deletes it otherwise.
func (s *Store) SetLikeStatus(ctx context.Context, item, user string, liked bool) bool {
	return s.do("SetLikeStatus", item+"/"+user, func(t kvtree.Tree) error {
		if liked {
			return t.Set(ctx, true, likesPath, item, user)
		}
		return t.Remove(ctx, likesPath, item, user)
	})
}

// ToggleLike inverts the like state of (item, user) and returns the new state.
// The read and the write are separate round trips.
func (s *Store) ToggleLike(ctx context.Context, item, user string) (ok bool, liked bool) {
	ok = s.do("ToggleLike", item+"/"+user, func(t kvtree.Tree) error {
		current, err := kvtree.Exists(ctx, t, likesPath, item, user)
		if err != nil {
			return err
		}
		liked = !current
		if liked {
			return t.Set(ctx, true, likesPath, item, user)
		}
		return t.Remove(ctx, likesPath, item, user)
	})
	if !ok {
		return false, false
	}
	return true, liked
}

// GetLikedItemsByUser scans every likes subtree and returns the titles user likes.
func (s *Store) GetLikedItemsByUser(ctx context.Context, user string) []string {
	var titles []string
	s.do("GetLikedItemsByUser", user, func(t kvtree.Tree) error {
		items, err := t.Children(ctx, likesPath)
		if err != nil {
			return err
		}
		for _, c := range items {
			var users map[string]json.RawMessage
			if err := c.Decode(&users); err != nil {
				continue
			}
			if _, ok := users[user]; ok {
				titles = append(titles, c.Key)
			}
		}
		return nil
	})
	return titles
}
