// Package store is the data-access layer between the HTTP routes and the
// hierarchical key-value tree. It owns the four top-level collections
//
//	user/<push-key>            user records, looked up by their logical id
//	item/<title>               items keyed by title
//	review/<title>_<writer>    at most one review per (item, writer)
//	likes/<title>/<user>=true  sparse wishlist edges
//
// Store methods never return errors. Backend failures and panics are logged
// and reported as the operation's negative result (false, nil or ""). Read-
// modify-write sequences such as Purchase and ToggleLike are not atomic:
// concurrent requests on the same key may interleave.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ewhamarket/backend/internal/config"
	"github.com/ewhamarket/backend/pkg/kvtree"
	"github.com/ewhamarket/backend/pkg/logger"
	"github.com/rs/zerolog"
)

// Top-level collections
const (
	usersPath   = "user"
	itemsPath   = "item"
	reviewsPath = "review"
	likesPath   = "likes"
)

// Collections lists the top-level collections in the order they are written
// by bulk imports.
var Collections = []string{usersPath, itemsPath, reviewsPath, likesPath}

var errDisabled = errors.New("store disabled")

// Entry is one record of a collection together with its storage key.
type Entry[T any] struct {
	Key   string
	Value *T
}

// Store 마켓 데이터 접근 계층
type Store struct {
	tree kvtree.Tree
	log  zerolog.Logger
}

// New creates a Store over tree. A nil tree yields a disabled store whose
// operations all report failure.
func New(tree kvtree.Tree, log *zerolog.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		tree: tree,
		log:  log.With().Str("component", "store").Logger(),
	}
}

// Open loads the credentials blob (explicit path, env, then default) and
// connects to the configured backend. Any failure leaves the store disabled.
func Open(ctx context.Context, configPath string, log *zerolog.Logger) *Store {
	s := New(nil, log)

	cfg, err := config.LoadDBConfig(configPath)
	if err != nil {
		s.log.Warn().Err(err).Msg("database config unavailable, store disabled")
		return s
	}

	tree, err := kvtree.Open(ctx, kvtree.Options{
		Driver:    cfg.Driver,
		URL:       cfg.DatabaseURL,
		Namespace: cfg.Namespace,
		PoolSize:  cfg.PoolSize,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("driver", cfg.Driver).Msg("database connection failed, store disabled")
		return s
	}

	s.tree = tree
	s.log.Info().Str("driver", cfg.Driver).Str("namespace", cfg.Namespace).Msg("store connected")
	return s
}

// Enabled reports whether a backend is attached
func (s *Store) Enabled() bool {
	return s.tree != nil
}

// Ping checks the backend connection
func (s *Store) Ping(ctx context.Context) error {
	if s.tree == nil {
		return errDisabled
	}
	return s.tree.Ping(ctx)
}

// Close releases the backend connection
func (s *Store) Close() error {
	if s.tree == nil {
		return nil
	}
	return s.tree.Close()
}

// do runs fn against the tree. It returns false when the store is disabled,
// fn returned an error, or fn panicked; errors and panics are logged with the
// operation name and key.
func (s *Store) do(op, key string, fn func(t kvtree.Tree) error) (ok bool) {
	if s.tree == nil {
		s.log.Debug().Str("op", op).Str("key", key).Msg(errDisabled.Error())
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("op", op).Str("key", key).
				Err(fmt.Errorf("panic: %v", r)).Msg("store operation failed")
			ok = false
		}
	}()

	if err := fn(s.tree); err != nil {
		s.log.Error().Str("op", op).Str("key", key).Err(err).Msg("store operation failed")
		return false
	}
	return true
}

// getRecord decodes the node at path into v. found is false when it does not exist.
func getRecord(ctx context.Context, t kvtree.Tree, v interface{}, path ...string) (found bool, err error) {
	raw, err := t.Get(ctx, path...)
	if errors.Is(err, kvtree.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %v: %w", path, err)
	}
	return true, nil
}

// listRecords decodes every child of a collection in insertion order.
// Records that cannot be decoded are skipped and logged.
func listRecords[T any](ctx context.Context, s *Store, t kvtree.Tree, collection string) ([]Entry[T], error) {
	children, err := t.Children(ctx, collection)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry[T], 0, len(children))
	for _, c := range children {
		var v T
		if err := c.Decode(&v); err != nil {
			s.log.Warn().Str("collection", collection).Str("key", c.Key).Err(err).Msg("skipping malformed record")
			continue
		}
		entries = append(entries, Entry[T]{Key: c.Key, Value: &v})
	}
	return entries, nil
}
