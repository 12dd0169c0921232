// Package migration moves data from a Realtime Database JSON export into a tree backend.
package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ewhamarket/backend/internal/domain"
	"github.com/ewhamarket/backend/internal/store"
	"github.com/ewhamarket/backend/pkg/kvtree"
	"github.com/rs/zerolog"
)

// Report 가져오기 결과
type Report struct {
	Written map[string]int `json:"written"`
	Skipped []string       `json:"skipped,omitempty"`
	DryRun  bool           `json:"dry_run"`
}

func (r *Report) skip(format string, args ...interface{}) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

// Importer writes an export into a tree
type Importer struct {
	tree   kvtree.Tree
	log    zerolog.Logger
	dryRun bool
}

// NewImporter creates an Importer. With dryRun nothing is written.
func NewImporter(tree kvtree.Tree, log zerolog.Logger, dryRun bool) *Importer {
	return &Importer{tree: tree, log: log, dryRun: dryRun}
}

// Import reads a whole-database export ({"user":{...},"item":{...},...}).
// Records are written in key order, which for push keys is creation order.
// Records that do not decode as their collection's type are skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var root map[string]json.RawMessage
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	report := &Report{Written: map[string]int{}, DryRun: im.dryRun}
	known := map[string]bool{}
	for _, collection := range store.Collections {
		known[collection] = true
		raw, ok := root[collection]
		if !ok || isNull(raw) {
			continue
		}
		if err := im.importCollection(ctx, collection, raw, report); err != nil {
			return report, err
		}
	}

	for _, name := range sortedKeys(root) {
		if !known[name] {
			report.skip("%s: unknown collection", name)
		}
	}
	return report, nil
}

func (im *Importer) importCollection(ctx context.Context, collection string, raw json.RawMessage, report *Report) error {
	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		report.skip("%s: not an object", collection)
		return nil
	}

	for _, key := range sortedKeys(records) {
		value := records[key]
		if err := checkRecord(collection, value); err != nil {
			report.skip("%s/%s: %v", collection, key, err)
			continue
		}
		if im.dryRun {
			im.log.Info().Str("collection", collection).Str("key", key).Msg("would write")
			report.Written[collection]++
			continue
		}

		err := im.tree.Set(ctx, value, collection, key)
		if errors.Is(err, kvtree.ErrInvalidKey) {
			report.skip("%s/%s: %v", collection, key, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("write %s/%s: %w", collection, key, err)
		}
		report.Written[collection]++
	}

	im.log.Info().Str("collection", collection).Int("records", report.Written[collection]).Msg("collection imported")
	return nil
}

// checkRecord verifies that value has the shape the store reads back
func checkRecord(collection string, value json.RawMessage) error {
	var target interface{}
	switch collection {
	case "user":
		var u domain.User
		if err := decodeRecord(value, &u); err != nil {
			return err
		}
		if u.ID == "" {
			return errors.New("missing id")
		}
		return nil
	case "item":
		target = &domain.Item{}
	case "review":
		target = &domain.Review{}
	case "likes":
		// likes/<item>/<user> = true
		var users map[string]bool
		if err := json.Unmarshal(value, &users); err != nil {
			return fmt.Errorf("like edges: %w", err)
		}
		for user, liked := range users {
			if !liked {
				return fmt.Errorf("like edge %q is not true", user)
			}
		}
		return nil
	default:
		return errors.New("unknown collection")
	}
	return decodeRecord(value, target)
}

func decodeRecord(value json.RawMessage, target interface{}) error {
	if isNull(value) {
		return errors.New("null record")
	}
	if err := json.Unmarshal(value, target); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
