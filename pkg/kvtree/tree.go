// Package kvtree provides a hierarchical key-value tree modeled after a
// realtime document database: every node is either a scalar or a mapping of
// child keys to child nodes.
//
// All backends share one storage layout. A tree is flattened into leaf rows
// (slash-joined path -> JSON scalar), each carrying an ordering sequence, so
// that enumeration of a node's children follows insertion order.
package kvtree

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no node exists at the path.
	ErrNotFound = errors.New("kvtree: node not found")
	// ErrInvalidKey is returned for empty segments or segments containing . $ # [ ] /
	ErrInvalidKey = errors.New("kvtree: invalid key")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("kvtree: tree closed")
)

// Child is one direct child of a node.
type Child struct {
	Key   string
	Value json.RawMessage
}

// Decode unmarshals the child value into v.
func (c Child) Decode(v interface{}) error {
	return json.Unmarshal(c.Value, v)
}

// Tree 계층형 키-값 저장소 인터페이스
type Tree interface {
	// Get returns the JSON value of the subtree at path.
	Get(ctx context.Context, path ...string) (json.RawMessage, error)
	// Set overwrites the subtree at path. A nil value or an empty object removes it.
	Set(ctx context.Context, value interface{}, path ...string) error
	// Update sets each field below path; a nil field value removes that child.
	Update(ctx context.Context, fields map[string]interface{}, path ...string) error
	// Remove deletes the subtree at path. Removing an absent node is not an error.
	Remove(ctx context.Context, path ...string) error
	// Children lists the direct children of path in insertion order.
	Children(ctx context.Context, path ...string) ([]Child, error)
	// Push stores value under a generated, time-ordered key and returns the key.
	Push(ctx context.Context, value interface{}, path ...string) (string, error)

	Ping(ctx context.Context) error
	Close() error
}

// Exists reports whether a node exists at path.
func Exists(ctx context.Context, t Tree, path ...string) (bool, error) {
	_, err := t.Get(ctx, path...)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
