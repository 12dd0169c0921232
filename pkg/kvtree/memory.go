package kvtree

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryTree keeps the tree in process memory. It is used by tests and by the
// "memory" driver for local runs; contents are lost on exit.
type MemoryTree struct {
	mu     sync.RWMutex
	leaves map[string]leaf
	seq    int64
	closed bool
}

// NewMemoryTree creates an empty in-memory tree
func NewMemoryTree() *MemoryTree {
	return &MemoryTree{leaves: make(map[string]leaf)}
}

func (m *MemoryTree) subtree(prefix string) []leaf {
	var out []leaf
	for p, l := range m.leaves {
		if inSubtree(p, prefix) {
			out = append(out, l)
		}
	}
	return out
}

func (m *MemoryTree) Get(_ context.Context, path ...string) (json.RawMessage, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return rebuild(p, m.subtree(p))
}

func (m *MemoryTree) Set(_ context.Context, value interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	flat, err := flatten(p, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.setLocked(p, flat)
	return nil
}

func (m *MemoryTree) setLocked(p string, flat map[string]json.RawMessage) {
	old := m.subtree(p)
	seq, ok := minSeq(old)
	if !ok {
		m.seq++
		seq = m.seq
	}
	for _, l := range old {
		delete(m.leaves, l.path)
	}
	for _, a := range ancestors(p) {
		delete(m.leaves, a)
	}
	for lp, v := range flat {
		m.leaves[lp] = leaf{path: lp, value: v, seq: seq}
	}
}

func (m *MemoryTree) Update(_ context.Context, fields map[string]interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	flats := make(map[string]map[string]json.RawMessage, len(fields))
	for _, k := range sortedFields(fields) {
		if !ValidKey(k) {
			return ErrInvalidKey
		}
		cp := childPath(p, k)
		flat, err := flatten(cp, fields[k])
		if err != nil {
			return err
		}
		flats[cp] = flat
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, k := range sortedFields(fields) {
		cp := childPath(p, k)
		m.setLocked(cp, flats[cp])
	}
	return nil
}

func (m *MemoryTree) Remove(_ context.Context, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, l := range m.subtree(p) {
		delete(m.leaves, l.path)
	}
	return nil
}

func (m *MemoryTree) Children(_ context.Context, path ...string) ([]Child, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return group(p, m.subtree(p))
}

func (m *MemoryTree) Push(ctx context.Context, value interface{}, path ...string) (string, error) {
	key, err := pushKey()
	if err != nil {
		return "", err
	}
	if err := m.Set(ctx, value, append(append([]string{}, path...), key)...); err != nil {
		return "", err
	}
	return key, nil
}

func (m *MemoryTree) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *MemoryTree) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
