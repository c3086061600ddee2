package store

import (
	"context"
	"sync"
)

// Memory keeps entries in a map. It is the default backend and the one
// tests run against.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Len reports the number of committed entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Begin(_ context.Context) (Tx, error) {
	return &memoryTx{parent: m, writes: make(map[string]*[]byte)}, nil
}

func (m *Memory) Close() error { return nil }

// memoryTx buffers writes; a nil slot marks a deletion.
type memoryTx struct {
	parent *Memory
	writes map[string]*[]byte
	order  []string
	done   bool
}

func (tx *memoryTx) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}
	if slot, ok := tx.writes[string(key)]; ok {
		if slot == nil {
			return nil, false, nil
		}
		return append([]byte(nil), (*slot)...), true, nil
	}
	return tx.parent.Get(ctx, key)
}

func (tx *memoryTx) record(key string, slot *[]byte) {
	if _, seen := tx.writes[key]; !seen {
		tx.order = append(tx.order, key)
	}
	tx.writes[key] = slot
}

func (tx *memoryTx) Put(_ context.Context, key, value []byte) error {
	if tx.done {
		return ErrTxDone
	}
	v := append([]byte(nil), value...)
	tx.record(string(key), &v)
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, key []byte) (bool, error) {
	_, existed, err := tx.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if existed {
		tx.record(string(key), nil)
	}
	return existed, nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.parent.mu.Lock()
	defer tx.parent.mu.Unlock()
	for _, key := range tx.order {
		if slot := tx.writes[key]; slot == nil {
			delete(tx.parent.entries, key)
		} else {
			tx.parent.entries[key] = *slot
		}
	}
	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.writes = nil
	return nil
}
