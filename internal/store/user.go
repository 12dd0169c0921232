package store

import (
	"context"

	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/pkg/kvtree"
)

// findUser scans user records for the logical id. The storage key is opaque,
// so every lookup by id is a full scan; callers only rely on the contract
// "unique match or nil".
func (s *Store) findUser(ctx context.Context, t kvtree.Tree, id string) (*Entry[domain.User], error) {
	users, err := listRecords[domain.User](ctx, s, t, usersPath)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Value.ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// IsIDAvailable reports whether no user record uses id.
// It fails open: when the store is disabled or unreachable it returns true so
// an outage never reports a free id as taken.
func (s *Store) IsIDAvailable(ctx context.Context, id string) bool {
	taken := false
	ok := s.do("IsIDAvailable", id, func(t kvtree.Tree) error {
		found, err := s.findUser(ctx, t, id)
		if err != nil {
			return err
		}
		taken = found != nil
		return nil
	})
	if !ok {
		return true
	}
	return !taken
}

// RegisterUser stores a new user under a generated key after re-checking the id.
// pwHash replaces whatever user.PW holds.
func (s *Store) RegisterUser(ctx context.Context, user domain.User, pwHash string) bool {
	if !s.IsIDAvailable(ctx, user.ID) {
		s.log.Info().Str("op", "RegisterUser").Str("key", user.ID).Msg("duplicate id")
		return false
	}

	user.PW = pwHash
	return s.do("RegisterUser", user.ID, func(t kvtree.Tree) error {
		_, err := t.Push(ctx, user, usersPath)
		return err
	})
}

// Authenticate reports whether a user with exactly (id, pwHash) exists.
// pwHash is compared as-is; hashing is the caller's job.
func (s *Store) Authenticate(ctx context.Context, id, pwHash string) bool {
	matched := false
	s.do("Authenticate", id, func(t kvtree.Tree) error {
		users, err := listRecords[domain.User](ctx, s, t, usersPath)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Value.ID == id && u.Value.PW == pwHash {
				matched = true
				break
			}
		}
		return nil
	})
	return matched
}

// GetUserInfo returns the user with the logical id, or nil.
func (s *Store) GetUserInfo(ctx context.Context, id string) *domain.User {
	var user *domain.User
	s.do("GetUserInfo", id, func(t kvtree.Tree) error {
		found, err := s.findUser(ctx, t, id)
		if err != nil || found == nil {
			return err
		}
		user = found.Value
		return nil
	})
	return user
}

// UpdateProfileImage sets profile_img of the user with the logical id.
func (s *Store) UpdateProfileImage(ctx context.Context, id, path string) bool {
	return s.updateUser(ctx, "UpdateProfileImage", id, map[string]interface{}{
		"profile_img": path,
	})
}

// UpdateUserInfo sets email and phone, and the password when pwHash is not empty.
func (s *Store) UpdateUserInfo(ctx context.Context, id, pwHash, email, phone string) bool {
	fields := map[string]interface{}{
		"email": email,
		"phone": phone,
	}
	if pwHash != "" {
		fields["pw"] = pwHash
	}
	return s.updateUser(ctx, "UpdateUserInfo", id, fields)
}

// updateUser locates the storage key for id and applies a partial update.
func (s *Store) updateUser(ctx context.Context, op, id string, fields map[string]interface{}) bool {
	updated := false
	ok := s.do(op, id, func(t kvtree.Tree) error {
		found, err := s.findUser(ctx, t, id)
		if err != nil || found == nil {
			return err
		}
		if err := t.Update(ctx, fields, usersPath, found.Key); err != nil {
			return err
		}
		updated = true
		return nil
	})
	return ok && updated
}
