package kvtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const separator = "/"

// leaf is one stored scalar.
type leaf struct {
	path  string
	value json.RawMessage
	seq   int64
}

// joinPath validates segments and joins them. An empty path addresses the root.
func joinPath(segments []string) (string, error) {
	for _, s := range segments {
		if !ValidKey(s) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
	}
	return strings.Join(segments, separator), nil
}

// ValidKey reports whether k can be used as a single path segment.
func ValidKey(k string) bool {
	if k == "" {
		return false
	}
	return !strings.ContainsAny(k, ".$#[]/")
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + separator + key
}

// inSubtree reports whether p is prefix itself or lies below it.
func inSubtree(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+separator)
}

// ancestors returns every proper ancestor path of p, nearest last.
func ancestors(p string) []string {
	parts := strings.Split(p, separator)
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], separator))
	}
	return out
}

// flatten converts value into leaf paths below prefix.
// nil values and empty objects produce no leaves.
func flatten(prefix string, value interface{}) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	out := make(map[string]json.RawMessage)
	if err := walk(prefix, generic, out); err != nil {
		return nil, err
	}
	if prefix == "" {
		// the root itself can never be a scalar
		if _, ok := out[""]; ok {
			return nil, fmt.Errorf("%w: root must be an object", ErrInvalidKey)
		}
	}
	return out, nil
}

func walk(p string, v interface{}, out map[string]json.RawMessage) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		for k, child := range t {
			if !ValidKey(k) {
				return fmt.Errorf("%w: %q", ErrInvalidKey, k)
			}
			if err := walk(childPath(p, k), child, out); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		// arrays are stored as objects keyed by index
		for i, child := range t {
			if err := walk(childPath(p, strconv.Itoa(i)), child, out); err != nil {
				return err
			}
		}
		return nil
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		out[p] = raw
		return nil
	}
}

// rebuild assembles the JSON value of the node at prefix from its leaves.
func rebuild(prefix string, leaves []leaf) (json.RawMessage, error) {
	if len(leaves) == 0 {
		return nil, ErrNotFound
	}
	for _, l := range leaves {
		if l.path == prefix && prefix != "" {
			return l.value, nil
		}
	}

	root := make(map[string]interface{})
	for _, l := range leaves {
		rel := l.path
		if prefix != "" {
			rel = strings.TrimPrefix(l.path, prefix+separator)
		}
		parts := strings.Split(rel, separator)
		node := root
		for i, part := range parts {
			if i == len(parts)-1 {
				node[part] = l.value
				break
			}
			next, ok := node[part].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				node[part] = next
			}
			node = next
		}
	}
	return json.Marshal(root)
}

// group splits the leaves below prefix into ordered direct children.
func group(prefix string, leaves []leaf) ([]Child, error) {
	type bucket struct {
		key    string
		seq    int64
		leaves []leaf
	}
	buckets := make(map[string]*bucket)
	for _, l := range leaves {
		if l.path == prefix {
			continue
		}
		rel := l.path
		if prefix != "" {
			rel = strings.TrimPrefix(l.path, prefix+separator)
		}
		key := rel
		if i := strings.Index(rel, separator); i >= 0 {
			key = rel[:i]
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key, seq: l.seq}
			buckets[key] = b
		}
		if l.seq < b.seq {
			b.seq = l.seq
		}
		b.leaves = append(b.leaves, l)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].seq != ordered[j].seq {
			return ordered[i].seq < ordered[j].seq
		}
		return ordered[i].key < ordered[j].key
	})

	children := make([]Child, 0, len(ordered))
	for _, b := range ordered {
		value, err := rebuild(childPath(prefix, b.key), b.leaves)
		if err != nil {
			return nil, err
		}
		children = append(children, Child{Key: b.key, Value: value})
	}
	return children, nil
}

// minSeq returns the lowest sequence among leaves, or false when there are none.
func minSeq(leaves []leaf) (int64, bool) {
	if len(leaves) == 0 {
		return 0, false
	}
	lowest := leaves[0].seq
	for _, l := range leaves[1:] {
		if l.seq < lowest {
			lowest = l.seq
		}
	}
	return lowest, true
}

// pushKey generates a time-ordered opaque child key.
func pushKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate push key: %w", err)
	}
	return id.String(), nil
}

// sortedFields returns update field names in a stable order.
func sortedFields(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
