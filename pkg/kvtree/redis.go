package kvtree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const scanCount = 500

// RedisTree stores the flattened tree in three Redis keys:
//
//	<ns>:leaves   hash  path -> JSON scalar
//	<ns>:seq      hash  path -> ordering sequence
//	<ns>:counter  int   sequence generator
type RedisTree struct {
	client *redis.Client
	ns     string
}

// NewRedisTree Redis 기반 트리 생성
func NewRedisTree(client *redis.Client, namespace string) *RedisTree {
	if namespace == "" {
		namespace = "market"
	}
	return &RedisTree{client: client, ns: namespace}
}

func (r *RedisTree) leavesKey() string  { return r.ns + ":leaves" }
func (r *RedisTree) seqKey() string     { return r.ns + ":seq" }
func (r *RedisTree) counterKey() string { return r.ns + ":counter" }

// escapeGlob escapes the characters HSCAN MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// subtree loads every leaf at or below prefix.
func (r *RedisTree) subtree(ctx context.Context, prefix string) ([]leaf, error) {
	values := make(map[string]string)

	pattern := "*"
	if prefix != "" {
		v, err := r.client.HGet(ctx, r.leavesKey(), prefix).Result()
		switch {
		case err == nil:
			values[prefix] = v
		case !errors.Is(err, redis.Nil):
			return nil, fmt.Errorf("hget %s: %w", prefix, err)
		}
		pattern = escapeGlob(prefix) + separator + "*"
	}

	var cursor uint64
	for {
		kv, next, err := r.client.HScan(ctx, r.leavesKey(), cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("hscan %s: %w", pattern, err)
		}
		for i := 0; i+1 < len(kv); i += 2 {
			values[kv[i]] = kv[i+1]
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(values) == 0 {
		return nil, nil
	}

	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	seqs, err := r.client.HMGet(ctx, r.seqKey(), paths...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget seq: %w", err)
	}

	leaves := make([]leaf, 0, len(paths))
	for i, p := range paths {
		var seq int64
		if s, ok := seqs[i].(string); ok {
			seq, _ = strconv.ParseInt(s, 10, 64)
		}
		leaves = append(leaves, leaf{path: p, value: json.RawMessage(values[p]), seq: seq})
	}
	return leaves, nil
}

func (r *RedisTree) Get(ctx context.Context, path ...string) (json.RawMessage, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	leaves, err := r.subtree(ctx, p)
	if err != nil {
		return nil, err
	}
	return rebuild(p, leaves)
}

func (r *RedisTree) Set(ctx context.Context, value interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	flat, err := flatten(p, value)
	if err != nil {
		return err
	}
	return r.write(ctx, map[string]map[string]json.RawMessage{p: flat}, []string{p})
}

func (r *RedisTree) Update(ctx context.Context, fields map[string]interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	targets := make(map[string]map[string]json.RawMessage, len(fields))
	order := make([]string, 0, len(fields))
	for _, k := range sortedFields(fields) {
		if !ValidKey(k) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		cp := childPath(p, k)
		flat, err := flatten(cp, fields[k])
		if err != nil {
			return err
		}
		targets[cp] = flat
		order = append(order, cp)
	}
	return r.write(ctx, targets, order)
}

// write replaces each target subtree with its new leaves in one MULTI block.
func (r *RedisTree) write(ctx context.Context, targets map[string]map[string]json.RawMessage, order []string) error {
	var stale []string
	leafValues := make(map[string]interface{})
	seqValues := make(map[string]interface{})

	for _, target := range order {
		old, err := r.subtree(ctx, target)
		if err != nil {
			return err
		}
		seq, ok := minSeq(old)
		if !ok {
			seq, err = r.client.Incr(ctx, r.counterKey()).Result()
			if err != nil {
				return fmt.Errorf("incr counter: %w", err)
			}
		}
		for _, l := range old {
			stale = append(stale, l.path)
		}
		stale = append(stale, ancestors(target)...)
		for lp, v := range targets[target] {
			leafValues[lp] = string(v)
			seqValues[lp] = seq
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.HDel(ctx, r.leavesKey(), stale...)
			pipe.HDel(ctx, r.seqKey(), stale...)
		}
		if len(leafValues) > 0 {
			pipe.HSet(ctx, r.leavesKey(), leafValues)
			pipe.HSet(ctx, r.seqKey(), seqValues)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %v: %w", order, err)
	}
	return nil
}

func (r *RedisTree) Remove(ctx context.Context, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	old, err := r.subtree(ctx, p)
	if err != nil {
		return err
	}
	if len(old) == 0 {
		return nil
	}
	stale := make([]string, 0, len(old))
	for _, l := range old {
		stale = append(stale, l.path)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, r.leavesKey(), stale...)
		pipe.HDel(ctx, r.seqKey(), stale...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

func (r *RedisTree) Children(ctx context.Context, path ...string) ([]Child, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	leaves, err := r.subtree(ctx, p)
	if err != nil {
		return nil, err
	}
	return group(p, leaves)
}

func (r *RedisTree) Push(ctx context.Context, value interface{}, path ...string) (string, error) {
	key, err := pushKey()
	if err != nil {
		return "", err
	}
	if err := r.Set(ctx, value, append(append([]string{}, path...), key)...); err != nil {
		return "", err
	}
	return key, nil
}

func (r *RedisTree) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisTree) Close() error {
	return r.client.Close()
}
