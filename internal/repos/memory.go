package repos

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory keeps JSON-encoded documents in maps. Stored bytes are never mutated,
// so readers can hand them out without copying.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex // serializes transactions, including single writes
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string]map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, coll, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[coll][id]
	if !ok {
		return nil, ErrNotFound
	}
	return jsonDoc(b), nil
}

func (m *Memory) Put(ctx context.Context, coll, id string, v any) error {
	return m.RunInTx(ctx, func(ctx context.Context, b Backend) error {
		return b.Put(ctx, coll, id, v)
	})
}

func (m *Memory) Delete(ctx context.Context, coll, id string) error {
	return m.RunInTx(ctx, func(ctx context.Context, b Backend) error {
		return b.Delete(ctx, coll, id)
	})
}

func (m *Memory) List(_ context.Context, coll string) ([]Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Doc, 0, len(m.data[coll]))
	for _, b := range m.data[coll] {
		out = append(out, jsonDoc(b))
	}
	return out, nil
}

func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memTx{m: m, staged: map[string]map[string][]byte{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for coll, docs := range tx.staged {
		if m.data[coll] == nil {
			m.data[coll] = map[string][]byte{}
		}
		for id, b := range docs {
			if b == nil {
				delete(m.data[coll], id)
				continue
			}
			m.data[coll][id] = b
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// memTx stages writes over the committed maps; a nil value marks a delete.
type memTx struct {
	m      *Memory
	staged map[string]map[string][]byte
}

func (t *memTx) Get(ctx context.Context, coll, id string) (Doc, error) {
	if b, ok := t.staged[coll][id]; ok {
		if b == nil {
			return nil, ErrNotFound
		}
		return jsonDoc(b), nil
	}
	return t.m.Get(ctx, coll, id)
}

func (t *memTx) Put(_ context.Context, coll, id string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.stage(coll, id, b)
	return nil
}

func (t *memTx) Delete(ctx context.Context, coll, id string) error {
	if _, err := t.Get(ctx, coll, id); err != nil {
		return err
	}
	t.stage(coll, id, nil)
	return nil
}

func (t *memTx) List(_ context.Context, coll string) ([]Doc, error) {
	t.m.mu.RLock()
	merged := make(map[string][]byte, len(t.m.data[coll]))
	for id, b := range t.m.data[coll] {
		merged[id] = b
	}
	t.m.mu.RUnlock()
	for id, b := range t.staged[coll] {
		if b == nil {
			delete(merged, id)
			continue
		}
		merged[id] = b
	}
	out := make([]Doc, 0, len(merged))
	for _, b := range merged {
		out = append(out, jsonDoc(b))
	}
	return out, nil
}

// RunInTx joins the enclosing transaction.
func (t *memTx) RunInTx(ctx context.Context, fn func(ctx context.Context, b Backend) error) error {
	return fn(ctx, t)
}

func (t *memTx) Close() error { return nil }

func (t *memTx) stage(coll, id string, b []byte) {
	if t.staged[coll] == nil {
		t.staged[coll] = map[string][]byte{}
	}
	t.staged[coll][id] = b
}
